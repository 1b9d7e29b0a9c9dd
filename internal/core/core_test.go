package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvKey(t *testing.T) {
	if got := EnvKey("custom_dns"); got != "RDAPCT_CUSTOM_DNS" {
		t.Fatalf("unexpected env key %s", got)
	}
	if got := EnvKey("config", "dir", "path"); got != "RDAPCT_CONFIG_DIR_PATH" {
		t.Fatalf("unexpected env key %s", got)
	}
}

func TestUserAgent(t *testing.T) {
	if !strings.HasPrefix(UserAgent(), "rdapct/"+Version()) {
		t.Fatalf("unexpected user agent %s", UserAgent())
	}
}

func TestOpenFileFallsBackToConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rdapct-test.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvKey("config", "dir", "path"), dir)
	file, err := OpenFile("rdapct-test.json")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	_ = file.Close()
	if _, err := OpenFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected an error for a missing absolute path")
	}
}
