package embed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nikicat/webui-embed/internal/fileutil"
)

// ErrNoDistDir is returned by Generate in strict mode when the dist
// directory is missing.
var ErrNoDistDir = errors.New("dist directory not found")

// Failure records an asset that exists but could not be embedded.
type Failure struct {
	Asset
	Err string `json:"error"`
}

// Result summarizes one header generation.
type Result struct {
	Header    string      `json:"header"`
	Embedded  []*Resource `json:"embedded"`
	Missing   []Asset     `json:"missing,omitempty"`
	Failed    []Failure   `json:"failed,omitempty"`
	TotalSize int         `json:"total_size"`
}

// Build discovers and encodes the assets of distDir and renders the header
// text. Missing candidates are skipped; unreadable ones are logged and
// skipped.
func Build(distDir string, opts Options, log *slog.Logger) (string, *Result) {
	if log == nil {
		log = slog.Default()
	}
	res := &Result{}
	for _, a := range Discover(distDir, log) {
		if !a.Exists(distDir) {
			log.Debug("asset not found", "path", a.Path)
			res.Missing = append(res.Missing, a)
			continue
		}
		r, err := Encode(filepath.Join(distDir, filepath.FromSlash(a.Path)), a, opts)
		if err != nil {
			log.Error("failed to embed asset", "path", a.Path, "error", err)
			res.Failed = append(res.Failed, Failure{Asset: a, Err: err.Error()})
			continue
		}
		log.Info("embedding asset", "path", a.Path, "ident", r.Ident,
			"size", r.OriginalSize, "embedded", r.Len(), "compressed", r.Compressed)
		res.Embedded = append(res.Embedded, r)
		res.TotalSize += r.Len()
	}
	return Render(res.Embedded), res
}

// GenerateOptions configures Generate.
type GenerateOptions struct {
	Options
	// RequireDist makes a missing dist directory an error instead of
	// producing a header with no assets.
	RequireDist bool
	Logger      *slog.Logger
}

// Generate builds the header for distDir and writes it to headerPath. The
// header is written even when nothing was embedded.
func Generate(distDir, headerPath string, opts GenerateOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if info, err := os.Stat(distDir); err != nil || !info.IsDir() {
		if opts.RequireDist {
			return nil, fmt.Errorf("%w: %s", ErrNoDistDir, distDir)
		}
		log.Warn("dist directory not found, header will be empty", "dir", distDir)
	}

	text, res := Build(distDir, opts.Options, log)
	res.Header = headerPath
	if err := fileutil.WriteAtomic(headerPath, []byte(text), 0o644); err != nil {
		return res, fmt.Errorf("write header: %w", err)
	}
	log.Info("generated header", "file", headerPath, "embedded", len(res.Embedded))
	return res, nil
}
