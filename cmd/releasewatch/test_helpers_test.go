package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"releasewatch/internal/testsupport"
)

type cliTestEnv struct {
	baseDir     string
	stateDir    string
	configPath  string
	authorsPath string
	source      *httptest.Server
	pages       map[string]string
}

type envOption func(*envSettings)

type envSettings struct {
	transport string
	ntfyTopic string
}

func withTransport(transport string) envOption {
	return func(s *envSettings) { s.transport = transport }
}

func withNtfyTopic(url string) envOption {
	return func(s *envSettings) {
		s.transport = "ntfy"
		s.ntfyTopic = url
	}
}

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	settings := envSettings{transport: "none"}
	for _, opt := range opts {
		opt(&settings)
	}

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"RESEND_API_KEY", "EMAIL_TO", "NTFY_TOPIC"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir:     base,
		stateDir:    filepath.Join(base, "state"),
		configPath:  filepath.Join(homeDir, ".config", "releasewatch", "config.toml"),
		authorsPath: filepath.Join(base, "authors.yaml"),
		pages:       map[string]string{},
	}
	env.source = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := env.pages[strings.TrimPrefix(r.URL.Path, "/authors/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(env.source.Close)

	content := fmt.Sprintf(`[paths]
state_dir = %q
authors_file = %q
log_dir = %q

[source]
base_url = %q
requests_per_second = 1000.0
burst = 100

[notifications]
transport = %q
ntfy_topic = %q
`, env.stateDir, env.authorsPath, filepath.Join(base, "logs"), env.source.URL, settings.transport, settings.ntfyTopic)
	testsupport.WriteFile(t, env.configPath, content)
	testsupport.WriteFile(t, env.authorsPath, "authors: []\n")
	return env
}

// addAuthor registers an active author whose page announces one book.
func (e *cliTestEnv) addAuthor(t *testing.T, name, sourceID, title, date string) {
	t.Helper()
	e.pages[sourceID] = testsupport.AuthorPage(name, title, date)

	data, err := os.ReadFile(e.authorsPath)
	if err != nil {
		t.Fatalf("read authors: %v", err)
	}
	doc := strings.TrimSuffix(string(data), "\n")
	if doc == "authors: []" {
		doc = "authors:"
	}
	doc += fmt.Sprintf("\n  - name: %s\n    source_id: %s\n    status: active\n", name, sourceID)
	testsupport.WriteFile(t, e.authorsPath, doc)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
