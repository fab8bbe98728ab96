package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikicat/webui-embed/internal/config"
)

func TestLoadConfigMissingDefault(t *testing.T) {
	cfg, err := loadConfig("", t.TempDir())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BuildCommand != "" || cfg.Header != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestLoadConfigProjectDefault(t *testing.T) {
	dir := t.TempDir()
	data := "build_command: pnpm build\nheader: include/WebUI.h\n"
	if err := os.WriteFile(config.DefaultPath(dir), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BuildCommand != "pnpm build" {
		t.Errorf("BuildCommand = %q", cfg.BuildCommand)
	}
	if cfg.Header != "include/WebUI.h" {
		t.Errorf("Header = %q", cfg.Header)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("header: [unclosed\n"), 0o644)

	if _, err := loadConfig(path, t.TempDir()); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSetFlags(t *testing.T) {
	c := newCommon("test")
	c.fs.Bool("strict", false, "")
	if err := c.fs.Parse([]string{"--log-level", "debug", "--strict"}); err != nil {
		t.Fatal(err)
	}

	set := setFlags(c.fs)
	if !set["log-level"] || !set["strict"] {
		t.Errorf("set = %v, want log-level and strict", set)
	}
	if set["log-format"] || set["project"] {
		t.Errorf("defaults reported as set: %v", set)
	}
}

func TestSetFlagsEmpty(t *testing.T) {
	fs := flag.NewFlagSet("empty", flag.ContinueOnError)
	fs.String("x", "", "")
	fs.Parse(nil)
	if got := setFlags(fs); len(got) != 0 {
		t.Errorf("setFlags = %v, want empty", got)
	}
}
