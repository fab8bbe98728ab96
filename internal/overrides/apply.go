package overrides

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nikicat/webui-embed/internal/fileutil"
)

// ErrNoSettingsSource is returned by PatchFile when the settings source
// does not exist.
var ErrNoSettingsSource = errors.New("settings source not found")

// Report describes the outcome of applying a document.
type Report struct {
	// Applied lists the paths whose find-literal was replaced.
	Applied []string `json:"applied,omitempty"`
	// Unmatched lists paths present in the document whose find-literal is
	// not in the source, for example because it was already patched.
	Unmatched []string `json:"unmatched,omitempty"`
	// Mistyped lists applied paths whose value had an unexpected JSON type.
	Mistyped []string `json:"mistyped,omitempty"`
	// Written is set when the settings source was rewritten.
	Written bool `json:"written"`
}

// UnmatchedError is returned in strict mode when some overrides found no
// default to replace.
type UnmatchedError struct {
	Paths []string
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("no default found for %s", strings.Join(e.Paths, ", "))
}

// Apply substitutes every override present in doc into content. It never
// fails: overrides whose default is missing are reported as unmatched.
func Apply(content string, doc Document) (string, Report) {
	var rep Report
	for _, r := range Rules {
		v, ok := doc.Lookup(r.Path)
		if !ok {
			continue
		}
		if !strings.Contains(content, r.Find) {
			rep.Unmatched = append(rep.Unmatched, r.Path)
			continue
		}
		content = strings.ReplaceAll(content, r.Find, r.Replacement(v))
		rep.Applied = append(rep.Applied, r.Path)
		if !r.Accepts(v) {
			rep.Mistyped = append(rep.Mistyped, r.Path)
		}
	}
	return content, rep
}

// Options tunes PatchFile.
type Options struct {
	// Strict turns unmatched overrides into an *UnmatchedError. The file is
	// still patched with the overrides that did match.
	Strict bool
	Logger *slog.Logger
}

// PatchFile applies doc to the settings source at path and rewrites it
// once, atomically, if anything changed.
func PatchFile(path string, doc Document, opts Options) (Report, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	if doc.Empty() {
		return Report{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Report{}, fmt.Errorf("%w: %s", ErrNoSettingsSource, path)
		}
		return Report{}, fmt.Errorf("read settings source: %w", err)
	}

	patched, rep := Apply(string(data), doc)
	for _, p := range rep.Mistyped {
		log.Warn("override value has unexpected type, substituted verbatim", "key", p)
	}
	for _, p := range rep.Unmatched {
		log.Warn("override default not found in settings source", "key", p, "file", path)
	}

	if patched != string(data) {
		written, err := fileutil.WriteIfChanged(path, []byte(patched), fileutil.FileMode(path, 0o644))
		if err != nil {
			return rep, fmt.Errorf("write settings source: %w", err)
		}
		rep.Written = written
	}
	if rep.Written {
		log.Info("updated settings source", "file", path, "applied", len(rep.Applied))
	}

	if opts.Strict && len(rep.Unmatched) > 0 {
		return rep, &UnmatchedError{Paths: rep.Unmatched}
	}
	return rep, nil
}
