package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type cliTestEnv struct {
	configPath string
	stagingDir string
	baseDir    string
	gemini     *fakeGemini
}

// fakeGemini serves the subset of the Gemini API the CLI touches. Uploads
// are ACTIVE immediately so no polling delay is incurred.
type fakeGemini struct {
	mu      sync.Mutex
	deleted int
	models  []string
	server  *httptest.Server
}

func newFakeGemini(t *testing.T) *fakeGemini {
	t.Helper()
	f := &fakeGemini{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/v1beta/files", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Goog-Upload-URL", f.server.URL+"/session/1")
	})
	mux.HandleFunc("POST /session/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = io.WriteString(w, `{"file":{"name":"files/cli1","uri":"`+f.server.URL+`/v1beta/files/cli1","mimeType":"video/mp4","state":"ACTIVE"}}`)
	})
	mux.HandleFunc("DELETE /v1beta/files/cli1", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.deleted++
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{}`)
	})
	mux.HandleFunc("POST /v1beta/models/{model}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.models = append(f.models, strings.TrimSuffix(r.PathValue("model"), ":generateContent"))
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"**Risk Score**: CAUTION"}]}}]}`)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGemini) deletions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "vouch.toml"),
		stagingDir: filepath.Join(base, "staging"),
		baseDir:    base,
		gemini:     newFakeGemini(t),
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"

[gemini]
api_key = "test-key"
base_url = %q
upload_url = %q

[models]
mode = "static"
candidates = ["gemini-test"]
default = "gemini-test"

[logging]
level = "error"
`,
		env.stagingDir,
		filepath.Join(env.baseDir, "logs"),
		env.gemini.server.URL+"/v1beta",
		env.gemini.server.URL+"/upload/v1beta/files",
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
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
