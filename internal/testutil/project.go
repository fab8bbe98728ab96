// Package testutil builds firmware project trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SettingsDefaults is a settings source holding every default the
// override rules look for.
const SettingsDefaults = `void SettingsManager::reset()
{
    settings.ap_mode             = false;
    settings.ssid                = "lee";
    settings.passwd              = "qqqqqqqq";
    settings.elegooip            = "192.168.1.123";
    settings.timeout             = 4000;
    settings.first_layer_timeout = 8000;
    settings.pause_on_runout     = true;
    settings.start_print_timeout = 10000;
    settings.enabled             = true;
    settings.has_connected       = false;
    settings.pause_verification_timeout_ms = 15000;
    settings.max_pause_retries   = 5;
}
`

// WriteTree creates files (slash-separated paths to contents) under a new
// temporary directory and returns it.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// ReadFile returns the contents of a slash-separated path under dir.
func ReadFile(t testing.TB, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
