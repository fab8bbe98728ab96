package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	os.WriteFile(path, []byte(`
webui_dir: frontend
dist_dir: frontend/build
settings_source: firmware/Settings.cpp
header: firmware/Web.h
overrides: overrides.json
build_command: pnpm build
compress: false
compress_threshold: 512
log_level: debug
log_format: json
watch:
  debounce: 2s
`), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WebUIDir != "frontend" {
		t.Errorf("WebUIDir = %q, want frontend", cfg.WebUIDir)
	}
	if cfg.DistDir != "frontend/build" {
		t.Errorf("DistDir = %q, want frontend/build", cfg.DistDir)
	}
	if cfg.SettingsSource != "firmware/Settings.cpp" {
		t.Errorf("SettingsSource = %q, want firmware/Settings.cpp", cfg.SettingsSource)
	}
	if cfg.BuildCommand != "pnpm build" {
		t.Errorf("BuildCommand = %q, want pnpm build", cfg.BuildCommand)
	}
	if cfg.Compress == nil || *cfg.Compress {
		t.Errorf("Compress = %v, want ptr to false", cfg.Compress)
	}
	if cfg.CompressThreshold != 512 {
		t.Errorf("CompressThreshold = %d, want 512", cfg.CompressThreshold)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if time.Duration(cfg.Watch.Debounce) != 2*time.Second {
		t.Errorf("Debounce = %v, want 2s", time.Duration(cfg.Watch.Debounce))
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/webui-embed.yaml")
	if err != nil {
		t.Fatalf("Load: expected nil error for missing file, got %v", err)
	}
	if cfg.DistDir != "" || cfg.Compress != nil {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	os.WriteFile(path, []byte(`{{{not yaml`), 0o644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	os.WriteFile(path, []byte(`
watch:
  debounce: soon
`), 0o644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadNegativeThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	os.WriteFile(path, []byte("compress_threshold: -1\n"), 0o644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative threshold")
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	p, err := (&Config{}).Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := map[string]string{
		"WebUIDir":       filepath.Join(dir, "webui"),
		"DistDir":        filepath.Join(dir, "webui", "dist"),
		"SettingsSource": filepath.Join(dir, "src", "SettingsManager.cpp"),
		"Header":         filepath.Join(dir, "src", "EmbeddedWebUI.h"),
		"Overrides":      filepath.Join(dir, "config.json"),
	}
	got := map[string]string{
		"WebUIDir":       p.WebUIDir,
		"DistDir":        p.DistDir,
		"SettingsSource": p.SettingsSource,
		"Header":         p.Header,
		"Overrides":      p.Overrides,
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}
	if p.BuildCommand != DefaultBuildCommand {
		t.Errorf("BuildCommand = %q, want %q", p.BuildCommand, DefaultBuildCommand)
	}
	if !p.Compress {
		t.Error("Compress = false, want true by default")
	}
	if p.CompressThreshold != DefaultCompressThreshold {
		t.Errorf("CompressThreshold = %d, want %d", p.CompressThreshold, DefaultCompressThreshold)
	}
	if p.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v, want %v", p.Debounce, DefaultDebounce)
	}
}

func TestResolveWebUIDirMovesDist(t *testing.T) {
	dir := t.TempDir()
	p, err := (&Config{WebUIDir: "ui"}).Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.DistDir != filepath.Join(dir, "ui", "dist") {
		t.Errorf("DistDir = %q, want %q", p.DistDir, filepath.Join(dir, "ui", "dist"))
	}
}

func TestResolveAbsolutePathKept(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "out.h")
	p, err := (&Config{Header: abs}).Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Header != abs {
		t.Errorf("Header = %q, want %q", p.Header, abs)
	}
}

func TestCompressFalseVsUnset(t *testing.T) {
	dir := t.TempDir()

	off := false
	p, err := (&Config{Compress: &off}).Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Compress {
		t.Error("explicit compress: false should disable compression")
	}

	p, err = (&Config{}).Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !p.Compress {
		t.Error("unset compress should default to true")
	}
}
