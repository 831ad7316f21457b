package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/abiiranathan/html6-lsp/validator"
)

// CheckOutput is the JSON document written by check --format json.
type CheckOutput struct {
	// Files is the number of files checked.
	Files int `json:"files"`
	// Results holds every diagnostic, file by file in argument order.
	Results []validator.ValidationResult `json:"results"`
	// Errors counts error-severity results after --warnings-as-errors.
	Errors int `json:"errors"`
	// Warnings counts the remaining warning-severity results.
	Warnings int `json:"warnings"`
}

// encodeJSON serializes output as JSON and writes it to w.
//
// If compress is true, the output is gzip-compressed.
func encodeJSON(w io.Writer, output any, compress bool) error {
	if compress {
		return writeGzipJSON(w, output)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "") // disable indent (reduces size by > 2x)

	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// writeGzipJSON writes gzip-compressed JSON to w.
func writeGzipJSON(w io.Writer, output any) error {
	gzWriter := gzip.NewWriter(w)

	enc := json.NewEncoder(gzWriter)
	enc.SetIndent("", "")

	if err := enc.Encode(output); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("encode JSON: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return nil
}

// absPaths resolves every path to an absolute path, since reported file
// names must not depend on the working directory of the editor.
func absPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("could not resolve absolute path for %s: %w", p, err)
		}
		out[i] = abs
	}
	return out, nil
}

// palette holds the colors of the text report.
type palette struct {
	path, errorSev, warningSev, infoSev, dim *color.Color
}

// newPalette returns colors for w. mode is "on", "off" or "auto"; auto
// colors only terminals.
func newPalette(w io.Writer, mode string) (*palette, error) {
	var enabled bool
	switch mode {
	case "on":
		enabled = true
	case "off":
		enabled = false
	case "", "auto":
		if f, ok := w.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	default:
		return nil, fmt.Errorf("invalid --color %q: want auto, on or off", mode)
	}

	p := &palette{
		path:       color.New(color.Bold),
		errorSev:   color.New(color.FgRed, color.Bold),
		warningSev: color.New(color.FgYellow, color.Bold),
		infoSev:    color.New(color.FgCyan),
		dim:        color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.path, p.errorSev, p.warningSev, p.infoSev, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p, nil
}

func (p *palette) severity(name string) *color.Color {
	switch name {
	case "error":
		return p.errorSev
	case "warning":
		return p.warningSev
	default:
		return p.infoSev
	}
}

// writeText prints results as file:line:col: severity: message. Extra
// message lines are indented under the first.
func writeText(w io.Writer, p *palette, results []validator.ValidationResult) {
	for _, r := range results {
		first, rest, _ := strings.Cut(r.Message, "\n")
		p.path.Fprintf(w, "%s:%d:%d", r.File, r.Line, r.Column)
		fmt.Fprint(w, ": ")
		p.severity(r.Severity).Fprint(w, r.Severity)
		fmt.Fprintf(w, ": %s", first)
		p.dim.Fprintf(w, " [%s]\n", r.Source)
		for line := range strings.Lines(rest) {
			if line = strings.TrimRight(line, "\n"); strings.TrimSpace(line) != "" {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}
