// Package pipeline runs the pre-build sequence: apply config overrides to
// the settings source, build the web UI, embed it into the header.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nikicat/webui-embed/internal/config"
	"github.com/nikicat/webui-embed/internal/embed"
	"github.com/nikicat/webui-embed/internal/frontend"
	"github.com/nikicat/webui-embed/internal/overrides"
)

// ErrNothingEmbedded is returned in standalone mode when the header holds
// no assets.
var ErrNothingEmbedded = errors.New("no assets embedded")

// Mode decides which failures reach the caller.
type Mode int

const (
	// Standalone surfaces a header with no assets as ErrNothingEmbedded.
	Standalone Mode = iota
	// Hook never fails, so the firmware build always proceeds.
	Hook
)

// Options selects the phases to run.
type Options struct {
	Paths        config.Paths
	Mode         Mode
	SkipPatch    bool
	SkipFrontend bool
	SkipEmbed    bool
	// Strict fails the patch phase on overrides whose default is missing.
	Strict bool
	// RequireDist fails the embed phase when the dist directory is missing.
	RequireDist bool
	Logger      *slog.Logger
}

// Result collects the outcome of every phase that ran.
type Result struct {
	RunID     string            `json:"run_id"`
	Overrides *overrides.Report `json:"overrides,omitempty"`
	Frontend  string            `json:"frontend"`
	Embed     *embed.Result     `json:"embed,omitempty"`
}

// Frontend phase outcomes.
const (
	FrontendBuilt   = "built"
	FrontendSkipped = "skipped"
	FrontendFailed  = "failed"
)

// Run executes the enabled phases in order. In Hook mode the returned
// error is always nil; problems are only logged.
func Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString()[:8], Frontend: FrontendSkipped}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run", res.RunID)

	err := run(ctx, opts, res, log)
	if opts.Mode == Hook {
		if err != nil {
			log.Error("web UI embedding failed, continuing firmware build", "error", err)
		}
		return res, nil
	}
	return res, err
}

func run(ctx context.Context, opts Options, res *Result, log *slog.Logger) error {
	p := opts.Paths

	if !opts.SkipPatch {
		rep, err := Patch(p, opts.Strict, log)
		res.Overrides = rep
		if err != nil {
			if opts.Strict {
				return err
			}
			log.Warn("failed to update settings source", "error", err)
		}
	}

	if !opts.SkipFrontend {
		res.Frontend = BuildFrontend(ctx, p, log)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.SkipEmbed {
		return nil
	}
	er, err := embed.Generate(p.DistDir, p.Header, embed.GenerateOptions{
		Options:     embed.Options{Compress: p.Compress, Threshold: p.CompressThreshold},
		RequireDist: opts.RequireDist,
		Logger:      log,
	})
	res.Embed = er
	if err != nil {
		return err
	}
	if len(er.Embedded) == 0 {
		return fmt.Errorf("%w into %s", ErrNothingEmbedded, p.Header)
	}
	return nil
}

// Patch loads the overrides document and applies it to the settings
// source. Missing or malformed documents and a missing settings source are
// logged and skipped. Only strict-mode mismatches and write failures are
// returned.
func Patch(p config.Paths, strict bool, log *slog.Logger) (*overrides.Report, error) {
	doc, err := overrides.LoadDocument(p.Overrides)
	if err != nil {
		log.Warn("failed to load overrides, using defaults", "error", err)
		doc = overrides.Document{}
	}
	if doc.Empty() {
		log.Info("no config overrides", "file", p.Overrides)
		return &overrides.Report{}, nil
	}
	log.Info("loaded config overrides", "file", p.Overrides)

	rep, err := overrides.PatchFile(p.SettingsSource, doc, overrides.Options{Strict: strict, Logger: log})
	if errors.Is(err, overrides.ErrNoSettingsSource) {
		log.Warn("settings source not found, skipping overrides", "file", p.SettingsSource)
		return &rep, nil
	}
	return &rep, err
}

// BuildFrontend runs the web UI build. Failures are logged, never returned:
// embedding proceeds with whatever the dist directory holds.
func BuildFrontend(ctx context.Context, p config.Paths, log *slog.Logger) string {
	log.Info("building web UI", "dir", p.WebUIDir, "command", p.BuildCommand)
	out, err := frontend.Build(ctx, p.WebUIDir, p.BuildCommand)
	var be *frontend.BuildError
	switch {
	case err == nil:
		log.Info("web UI build completed")
		if s := strings.TrimSpace(out.Stdout); s != "" {
			log.Debug("web UI build output", "stdout", s)
		}
		return FrontendBuilt
	case errors.Is(err, frontend.ErrSkipped):
		log.Warn("web UI directory or package.json not found, skipping build", "dir", p.WebUIDir)
		return FrontendSkipped
	case errors.As(err, &be):
		log.Warn("web UI build failed", "error", err, "stderr", strings.TrimSpace(be.Stderr))
		return FrontendFailed
	default:
		log.Warn("web UI build failed", "error", err)
		return FrontendFailed
	}
}
