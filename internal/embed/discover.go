// Package embed turns a built web UI into a C++ header of PROGMEM byte
// arrays for the firmware to serve.
package embed

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Role is the part an embedded file plays in the web UI.
type Role string

const (
	RoleMarkup     Role = "markup"
	RoleStylesheet Role = "stylesheet"
	RoleScript     Role = "script"
	RoleIcon       Role = "icon"
)

// Ident returns the C identifier the firmware uses for the role.
func (r Role) Ident() string {
	switch r {
	case RoleMarkup:
		return "webui_index_html"
	case RoleStylesheet:
		return "webui_css"
	case RoleScript:
		return "webui_js"
	case RoleIcon:
		return "webui_favicon"
	}
	return "webui_" + string(r)
}

// Asset is one file of the dist directory bound to a role. Path is
// slash-separated and relative to the dist directory.
type Asset struct {
	Role Role   `json:"role"`
	Path string `json:"path"`
}

const (
	markupPath = "index.html"
	assetsDir  = "assets"
)

var iconCandidates = []string{"favicon.ico", "assets/favicon.ico"}

// Discover lists the candidate assets of distDir in header order: markup,
// stylesheet, script, icon. The markup is always listed; it may not exist.
// When several stylesheets or scripts match, the last in lexical order
// wins.
func Discover(distDir string, log *slog.Logger) []Asset {
	if log == nil {
		log = slog.Default()
	}
	fsys := os.DirFS(distDir)

	assets := []Asset{{Role: RoleMarkup, Path: markupPath}}
	for _, m := range []struct {
		role    Role
		pattern string
	}{
		{RoleStylesheet, assetsDir + "/*.css"},
		{RoleScript, assetsDir + "/*.js"},
	} {
		if p, ok := pickLast(fsys, m.pattern, log); ok {
			assets = append(assets, Asset{Role: m.role, Path: p})
		}
	}

	for _, p := range iconCandidates {
		if isFile(fsys, p) {
			assets = append(assets, Asset{Role: RoleIcon, Path: p})
			break
		}
	}
	return assets
}

func pickLast(fsys fs.FS, pattern string, log *slog.Logger) (string, bool) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		log.Warn("asset glob failed", "pattern", pattern, "error", err)
		return "", false
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	chosen := matches[len(matches)-1]
	if len(matches) > 1 {
		log.Warn("multiple assets match, keeping the last", "pattern", pattern, "matches", matches, "chosen", chosen)
	}
	return chosen, true
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}

// Exists reports whether the asset is present under distDir.
func (a Asset) Exists(distDir string) bool {
	_, err := os.Stat(filepath.Join(distDir, filepath.FromSlash(a.Path)))
	return !errors.Is(err, fs.ErrNotExist)
}
