package pipeline

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/nikicat/webui-embed/internal/config"
	"github.com/nikicat/webui-embed/internal/overrides"
	"github.com/nikicat/webui-embed/internal/testutil"
)

const defaults = testutil.SettingsDefaults

type project struct {
	dir   string
	paths config.Paths
}

func newProject(t *testing.T, files map[string]string) project {
	t.Helper()
	dir := testutil.WriteTree(t, files)
	paths, err := (&config.Config{}).Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return project{dir: dir, paths: paths}
}

func (p project) read(t *testing.T, name string) string {
	t.Helper()
	return testutil.ReadFile(t, p.dir, name)
}

func TestRunFullPipeline(t *testing.T) {
	p := newProject(t, map[string]string{
		"config.json":             `{"wifi": {"ssid": "MyNet", "ap_mode": true}}`,
		"src/SettingsManager.cpp": defaults,
		"webui/dist/index.html":   "<html></html>",
		"webui/dist/assets/a.css": "body{}",
	})

	res, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}

	settings := p.read(t, "src/SettingsManager.cpp")
	if !strings.Contains(settings, `settings.ssid                = "MyNet";`) {
		t.Errorf("ssid not patched:\n%s", settings)
	}
	if !strings.Contains(settings, `settings.ap_mode             = true;`) {
		t.Errorf("ap_mode not patched:\n%s", settings)
	}
	if !strings.Contains(settings, `settings.passwd              = "qqqqqqqq";`) {
		t.Errorf("password should be untouched:\n%s", settings)
	}
	if len(res.Overrides.Applied) != 2 {
		t.Errorf("Applied = %v, want 2 entries", res.Overrides.Applied)
	}

	header := p.read(t, "src/EmbeddedWebUI.h")
	if !strings.Contains(header, "webui_index_html[]") || !strings.Contains(header, "webui_css[]") {
		t.Errorf("header missing assets:\n%s", header)
	}
	if len(res.Embed.Embedded) != 2 {
		t.Errorf("embedded %d, want 2", len(res.Embed.Embedded))
	}
}

func TestRunNoConfigLeavesSettings(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/SettingsManager.cpp": defaults,
		"webui/dist/index.html":   "<html></html>",
	})

	if _, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.read(t, "src/SettingsManager.cpp"); got != defaults {
		t.Errorf("settings changed without config:\n%s", got)
	}
}

func TestRunMalformedConfigIsSoft(t *testing.T) {
	p := newProject(t, map[string]string{
		"config.json":             `{"wifi": `,
		"src/SettingsManager.cpp": defaults,
		"webui/dist/index.html":   "<html></html>",
	})

	res, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.read(t, "src/SettingsManager.cpp"); got != defaults {
		t.Error("malformed config should not patch anything")
	}
	if len(res.Embed.Embedded) != 1 {
		t.Errorf("embedded %d, want 1", len(res.Embed.Embedded))
	}
}

func TestRunMissingSettingsSourceIsSoft(t *testing.T) {
	p := newProject(t, map[string]string{
		"config.json":           `{"wifi": {"ssid": "MyNet"}}`,
		"webui/dist/index.html": "<html></html>",
	})

	if _, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(p.paths.SettingsSource); !os.IsNotExist(err) {
		t.Error("settings source should not be created")
	}
}

func TestRunStandaloneNothingEmbedded(t *testing.T) {
	p := newProject(t, nil)

	res, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true})
	if !errors.Is(err, ErrNothingEmbedded) {
		t.Fatalf("err = %v, want ErrNothingEmbedded", err)
	}
	if res.Embed == nil || len(res.Embed.Embedded) != 0 {
		t.Errorf("Embed = %+v, want empty result", res.Embed)
	}
	// The header is still written with just the include guard.
	if h := p.read(t, "src/EmbeddedWebUI.h"); !strings.Contains(h, "#endif // EMBEDDED_WEBUI_H") {
		t.Errorf("header = %q", h)
	}
}

func TestRunHookNeverFails(t *testing.T) {
	p := newProject(t, nil)

	res, err := Run(context.Background(), Options{Paths: p.paths, Mode: Hook, RequireDist: true})
	if err != nil {
		t.Fatalf("hook mode returned %v", err)
	}
	if res.Frontend != FrontendSkipped {
		t.Errorf("Frontend = %q, want skipped", res.Frontend)
	}
}

func TestRunStrictMismatch(t *testing.T) {
	p := newProject(t, map[string]string{
		"config.json": `{"elegoo": {"ip": "10.0.0.9"}}`,
		// The firmware default drifted from the one the rule looks for.
		"src/SettingsManager.cpp": strings.Replace(defaults, "192.168.1.123", "192.168.0.107", 1),
		"webui/dist/index.html":   "<html></html>",
	})

	_, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true, Strict: true})
	var ue *overrides.UnmatchedError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *overrides.UnmatchedError", err)
	}
	if _, statErr := os.Stat(p.paths.Header); !os.IsNotExist(statErr) {
		t.Error("strict failure should stop before embedding")
	}

	// Without strict the same mismatch is only logged.
	if _, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true}); err != nil {
		t.Fatalf("lenient Run: %v", err)
	}
}

func TestRunFrontendBuildProducesDist(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := newProject(t, map[string]string{
		"webui/package.json": `{"name": "webui"}`,
	})
	p.paths.BuildCommand = `sh -c 'mkdir -p dist/assets && echo "<html></html>" > dist/index.html && echo "x=1" > dist/assets/app.js'`

	res, err := Run(context.Background(), Options{Paths: p.paths, SkipPatch: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Frontend != FrontendBuilt {
		t.Errorf("Frontend = %q, want built", res.Frontend)
	}
	if len(res.Embed.Embedded) != 2 {
		t.Errorf("embedded %d, want 2", len(res.Embed.Embedded))
	}
}

func TestRunFrontendFailureContinues(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := newProject(t, map[string]string{
		"webui/package.json":    `{"name": "webui"}`,
		"webui/dist/index.html": "<html>stale</html>",
	})
	p.paths.BuildCommand = `sh -c 'echo boom >&2; exit 1'`

	res, err := Run(context.Background(), Options{Paths: p.paths, SkipPatch: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Frontend != FrontendFailed {
		t.Errorf("Frontend = %q, want failed", res.Frontend)
	}
	if len(res.Embed.Embedded) != 1 {
		t.Errorf("stale dist should still be embedded, got %d", len(res.Embed.Embedded))
	}
}

func TestRunSkipEmbed(t *testing.T) {
	p := newProject(t, map[string]string{
		"config.json":             `{"wifi": {"ssid": "MyNet"}}`,
		"src/SettingsManager.cpp": defaults,
	})

	res, err := Run(context.Background(), Options{Paths: p.paths, SkipFrontend: true, SkipEmbed: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Embed != nil {
		t.Error("embed phase ran")
	}
	if _, err := os.Stat(p.paths.Header); !os.IsNotExist(err) {
		t.Error("header written with SkipEmbed")
	}
}
