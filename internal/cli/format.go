// Package cli formats pipeline results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nikicat/webui-embed/internal/embed"
	"github.com/nikicat/webui-embed/internal/hook"
	"github.com/nikicat/webui-embed/internal/overrides"
	"github.com/nikicat/webui-embed/internal/pipeline"
)

// Formatter outputs data in various formats.
type Formatter struct {
	w      io.Writer
	asJSON bool
}

// NewFormatter creates a new formatter.
func NewFormatter(w io.Writer, asJSON bool) *Formatter {
	return &Formatter{w: w, asJSON: asJSON}
}

// FormatResult outputs a pipeline result.
func (f *Formatter) FormatResult(res *pipeline.Result) error {
	if f.asJSON {
		return json.NewEncoder(f.w).Encode(res)
	}
	if res.Overrides != nil {
		f.formatOverrides(res.Overrides)
	}
	if res.Embed != nil {
		f.formatEmbed(res.Embed)
	}
	return nil
}

func (f *Formatter) formatOverrides(rep *overrides.Report) {
	if len(rep.Applied) == 0 && len(rep.Unmatched) == 0 {
		fmt.Fprintln(f.w, "No config overrides")
		return
	}
	if len(rep.Applied) > 0 {
		fmt.Fprintf(f.w, "Overrides applied:   %s\n", strings.Join(rep.Applied, ", "))
	}
	if len(rep.Unmatched) > 0 {
		fmt.Fprintf(f.w, "Overrides unmatched: %s\n", strings.Join(rep.Unmatched, ", "))
	}
}

func (f *Formatter) formatEmbed(res *embed.Result) {
	if len(res.Embedded) == 0 {
		fmt.Fprintf(f.w, "No assets embedded into %s\n", res.Header)
		return
	}

	// Print header
	fmt.Fprintf(f.w, "%-10s  %-20s  %-28s  %9s  %9s  %-22s  %s\n", "ROLE", "IDENT", "SOURCE", "SIZE", "EMBEDDED", "MIME", "GZIP")
	fmt.Fprintf(f.w, "%-10s  %-20s  %-28s  %9s  %9s  %-22s  %s\n", "----------", "--------------------", "----------------------------", "---------", "---------", "----------------------", "----")

	for _, r := range res.Embedded {
		fmt.Fprintf(f.w, "%-10s  %-20s  %-28s  %9s  %9s  %-22s  %s\n",
			r.Role, truncate(r.Ident, 20), truncate(r.Path, 28),
			formatSize(r.OriginalSize), formatSize(r.Len()), r.MIME, formatBool(r.Compressed))
	}
	for _, fl := range res.Failed {
		fmt.Fprintf(f.w, "%-10s  %-20s  %-28s  failed: %s\n", fl.Role, "-", truncate(fl.Path, 28), fl.Err)
	}
	fmt.Fprintf(f.w, "\n%d assets, %s embedded into %s\n", len(res.Embedded), formatSize(res.TotalSize), path.Base(res.Header))
}

// FormatHookStatus outputs the pre-build hook state.
func (f *Formatter) FormatHookStatus(st hook.Status) error {
	if f.asJSON {
		return json.NewEncoder(f.w).Encode(st)
	}
	fmt.Fprintf(f.w, "Script:     %s\n", st.Script)
	fmt.Fprintf(f.w, "Installed:  %s\n", formatBool(st.Installed))
	fmt.Fprintf(f.w, "Registered: %s\n", formatBool(st.Registered))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

func formatSize(n int) string {
	return humanize.Bytes(uint64(n))
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
