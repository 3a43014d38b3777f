package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AuthorPage renders a minimal author page announcing one book with the
// singular FAQ sentence the pattern extractor recognizes.
func AuthorPage(author, title, date string) string {
	return `<html><body><div class="faq"><p>` + author + ` has a new book coming out on ` +
		date + ` called ` + title + `.</p></div></body></html>`
}
