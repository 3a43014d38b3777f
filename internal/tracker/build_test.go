package tracker_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"releasewatch/internal/history"
	"releasewatch/internal/logging"
	"releasewatch/internal/testsupport"
	"releasewatch/internal/tracker"
)

func TestBuildRunsCycleAgainstHTTPServices(t *testing.T) {
	date := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/authors/jane-writer" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, testsupport.AuthorPage("Jane Writer", "The Long Road", date))
	}))
	defer source.Close()

	var (
		mu     sync.Mutex
		bodies []string
	)
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ntfy.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithSourceURL(source.URL),
		testsupport.WithNtfy(ntfy.URL+"/books"),
		testsupport.WithAuthors("authors:\n  - name: Jane Writer\n    source_id: jane-writer\n    status: active\n"),
	)

	tr, closeTracker, err := tracker.Build(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	result, err := tr.RunCycle(context.Background(), tracker.Options{})
	if closeErr := closeTracker(); closeErr != nil {
		t.Fatalf("close: %v", closeErr)
	}
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(result.NewDiscoveries) != 1 || result.Report.Sent() != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	mu.Lock()
	if len(bodies) != 1 || !strings.Contains(bodies[0], "The Long Road") {
		t.Fatalf("unexpected ntfy messages: %q", bodies)
	}
	mu.Unlock()

	runs, err := testsupport.MustOpenHistory(t, cfg).Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusSuccess || runs[0].ID != result.RunID {
		t.Fatalf("unexpected history: %+v", runs)
	}
	if len(runs[0].Dispatches) != 1 || runs[0].Dispatches[0].Kind != "discovery" || !runs[0].Dispatches[0].Success {
		t.Fatalf("unexpected dispatches: %+v", runs[0].Dispatches)
	}
}
