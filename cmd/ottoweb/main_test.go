package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hammamikhairi/ottoweb/internal/domain"
)

const soupPage = `<html><head><title>Soup</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Tomato Soup",
  "recipeIngredient": ["2 tomatoes", "1 onion", "500ml stock"],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Chop the onion"},
    {"@type": "HowToStep", "text": "Simmer for 5 minutes"},
    {"@type": "HowToStep", "text": "Serve"}
  ]
}
</script></head><body></body></html>`

type cliEnv struct {
	dir        string
	configPath string
	logPath    string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("AZURE_SPEECH_KEY", "")
	t.Setenv("AZURE_SPEECH_REGION", "")
	return &cliEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "ottoweb.toml"),
		logPath:    filepath.Join(dir, "ottoweb.log"),
	}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath, "--log-file", e.logPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (e *cliEnv) writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(e.dir, "soup.html")
	if err := os.WriteFile(path, []byte(soupPage), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return path
}

func TestExtractFile(t *testing.T) {
	env := setupCLIEnv(t)
	path := env.writePage(t)

	out, err := env.run(t, "", "extract", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var r domain.Recipe
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if r.Title != "Tomato Soup" {
		t.Errorf("title = %q", r.Title)
	}
	if len(r.Ingredients) != 3 || len(r.Steps) != 3 {
		t.Errorf("got %d ingredients, %d steps", len(r.Ingredients), len(r.Steps))
	}
	if r.SourceURL != path {
		t.Errorf("url = %q, want %q", r.SourceURL, path)
	}
}

func TestExtractURL(t *testing.T) {
	env := setupCLIEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(soupPage))
	}))
	defer srv.Close()

	out, err := env.run(t, "", "extract", srv.URL+"/soup")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, `"title": "Tomato Soup"`) {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, `"url": "`+srv.URL+`/soup"`) {
		t.Errorf("output missing url: %q", out)
	}
}

func TestExtractUpstreamError(t *testing.T) {
	env := setupCLIEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := env.run(t, "", "extract", srv.URL); err == nil {
		t.Fatal("expected an error for a 404 page")
	}
}

func TestConfigShowsDefaults(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := env.run(t, "", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "not found, using defaults") {
		t.Errorf("expected defaults notice: %q", out)
	}
	if !strings.Contains(out, "127.0.0.1:3000") {
		t.Errorf("expected default addr: %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := env.run(t, "", "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "wrote "+env.configPath) {
		t.Errorf("unexpected output: %q", out)
	}
	if _, err := os.Stat(env.configPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out, err = env.run(t, "", "config")
	if err != nil {
		t.Fatalf("config after init: %v", err)
	}
	if strings.Contains(out, "not found") {
		t.Errorf("written config not picked up: %q", out)
	}

	if _, err := env.run(t, "", "config", "init"); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	env := setupCLIEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[fetch]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := env.run(t, "", "config"); err == nil {
		t.Fatal("expected unknown key to fail")
	}
}

func TestCookPlain(t *testing.T) {
	env := setupCLIEnv(t)
	path := env.writePage(t)

	out, err := env.run(t, "1\nstart\nnext\ntimers\nquit\n", "cook", "--plain", path)
	if err != nil {
		t.Fatalf("cook: %v", err)
	}

	for _, want := range []string{
		"Tomato Soup",
		"[x] 1. 2 tomatoes",
		"[ ] 2. 1 onion",
		"Step 1 of 3",
		"Chop the onion",
		"Step 2 of 3",
		"Simmer for 5 minutes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCookRejectsMissingFile(t *testing.T) {
	env := setupCLIEnv(t)
	if _, err := env.run(t, "", "cook", "--plain", filepath.Join(env.dir, "missing.html")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
