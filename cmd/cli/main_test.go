package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("JWT_SECRET", "")
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.toml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "pixeltools ") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFetchWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cat.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "cat.png")
	_, stderr, err := runCLI(t, "fetch", srv.URL+"/cat.png", "-o", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(data, testPNG) {
		t.Fatalf("unexpected file contents: %q", data)
	}
	if !strings.Contains(stderr, "image/png") {
		t.Fatalf("expected summary on stderr, got %q", stderr)
	}
}

func TestFetchReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, _, err := runCLI(t, "fetch", srv.URL+"/missing.png")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected a 404 error, got %v", err)
	}
}

func TestUnfurlPassesThroughPlainURL(t *testing.T) {
	out, stderr, err := runCLI(t, "unfurl", "https://example.com/cat.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "https://example.com/cat.png" {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(stderr, "no unfurl strategy") {
		t.Fatalf("expected a note on stderr, got %q", stderr)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	_, _, err := runCLI(t, "token")
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("expected a missing secret error, got %v", err)
	}
}

func TestTokenUsesEnvSecret(t *testing.T) {
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	t.Setenv("JWT_SECRET", "cli-secret")
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.toml"), "token", "--ttl", "1h"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(stdout.String()), "."); len(parts) != 3 {
		t.Fatalf("expected a JWT, got %q", stdout.String())
	}
}
