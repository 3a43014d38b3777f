package authors

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	doc := `
authors:
  - name: Brandon Sanderson
    source_id: brandon-sanderson
    status: active
  - name: Martha Wells
    book_notification_id: martha-wells
    status: Paused
  - name: N. K. Jemisin
    source_id: n-k-jemisin
`
	got, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 authors, got %d", len(got))
	}
	if got[1].SourceID != "martha-wells" {
		t.Fatalf("legacy id not applied: %+v", got[1])
	}
	if got[1].Status != StatusPaused {
		t.Fatalf("status not normalized: %q", got[1].Status)
	}
	active := Active(got)
	if len(active) != 1 || active[0].Name != "Brandon Sanderson" {
		t.Fatalf("Active = %+v", active)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing source id",
			doc:  "authors:\n  - name: Someone\n    status: active\n",
			want: "source_id is required",
		},
		{
			name: "missing name",
			doc:  "authors:\n  - source_id: someone\n",
			want: "name is required",
		},
		{
			name: "bad status",
			doc:  "authors:\n  - name: Someone\n    source_id: someone\n    status: sleeping\n",
			want: "status must be one of",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q missing %q", err, tc.want)
			}
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("authors:\n  - name: A\n    source_id: a\n    nickname: x\n"))
	if err == nil || !strings.Contains(err.Error(), "nickname") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	got, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no authors, got %d", len(got))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "authors.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
