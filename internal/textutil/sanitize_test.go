package textutil

import "testing"

func TestCleanTitle(t *testing.T) {
	tests := map[string]string{
		"  \u201cWind and Truth.\u201d ": "Wind and Truth",
		"'Isles of the Emberdark',":      "Isles of the Emberdark",
		"The   Sunlit Man":               "The Sunlit Man",
		"Mistborn (Book 2).":             "Mistborn (Book 2)",
		"Dawn \u2014 Part One!":          "Dawn - Part One",
	}
	for input, want := range tests {
		if got := CleanTitle(input); got != want {
			t.Errorf("CleanTitle(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"Café Society!":     "cafe society",
		"Naïve  Résumé":     "naive  resume",
		"Mistborn: Book #1": "mistborn book 1",
	}
	for input, want := range tests {
		if got := SanitizeToken(input); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}
