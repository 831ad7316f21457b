package validator

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/abiiranathan/html6-lsp/markup"
	"go.lsp.dev/protocol"
	"golang.org/x/sync/errgroup"
)

// ═══════════════════════════════════════════════════════════════════════════
// ENGINE
// ═══════════════════════════════════════════════════════════════════════════

// Engine wires a parser, a pipeline and a locator into a single Validate
// entry point. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	walker Walker
}

// Option configures an Engine.
type Option func(*Engine)

// WithParser replaces the markup parser.
func WithParser(p markup.Parser) Option {
	return func(e *Engine) { e.walker.Parser = p }
}

// WithPipeline replaces the validator pipeline.
func WithPipeline(p Pipeline) Option {
	return func(e *Engine) { e.walker.Pipeline = p }
}

// WithLocator selects how diagnostic ranges are located.
func WithLocator(l Locator) Option {
	return func(e *Engine) { e.walker.Locate = l }
}

// WithSource sets the identifier stamped on diagnostics.
func WithSource(source string) Option {
	return func(e *Engine) { e.walker.Source = source }
}

// NewEngine returns an engine running every built-in validator over
// markup.Default, unless options say otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		walker: Walker{
			Parser:   markup.Default,
			Pipeline: DefaultPipeline(),
			Locate:   LocateSpan,
			Source:   Source,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate parses text and returns its diagnostics. Each call starts from a
// fresh diagnostics list; the only error is a parser failure.
func (e *Engine) Validate(text string) ([]protocol.Diagnostic, error) {
	return e.walker.Walk(text)
}

var defaultEngine = NewEngine()

// Validate runs the default engine over text.
func Validate(text string) ([]protocol.Diagnostic, error) {
	return defaultEngine.Validate(text)
}

// ═══════════════════════════════════════════════════════════════════════════
// BATCH VALIDATION (CONCURRENT)
// ═══════════════════════════════════════════════════════════════════════════

// FileResult holds the outcome of validating one file.
type FileResult struct {
	// Path is the file as it was passed in.
	Path string
	// Text is the file content, kept so ranges can be mapped back to source.
	Text string
	// Diagnostics found in the file. Nil when Err is set.
	Diagnostics []protocol.Diagnostic
	// Err is a read, parse or cancellation failure for this file only.
	Err error
}

// ValidateFiles validates many files concurrently.
//
// Concurrency model:
//   - at most jobs files are read and validated at once (GOMAXPROCS when
//     jobs <= 0), bounded by an errgroup
//   - every worker writes only its own slot of the result slice
//
// Parameters:
//   - ctx: cancelling it marks files that have not started with ctx.Err()
//   - paths: files to validate
//   - jobs: concurrency limit
//
// Returns: one FileResult per path, in input order. A failing file never
// aborts the batch.
func (e *Engine) ValidateFiles(ctx context.Context, paths []string, jobs int) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			results[i] = e.validateFile(path)
			return nil
		})
	}

	// Workers never return errors; failures live in each FileResult.
	_ = g.Wait()
	return results
}

func (e *Engine) validateFile(path string) FileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	text := string(content)
	diagnostics, err := e.Validate(text)
	if err != nil {
		return FileResult{Path: path, Text: text, Err: fmt.Errorf("validate %s: %w", path, err)}
	}
	return FileResult{Path: path, Text: text, Diagnostics: diagnostics}
}

// ═══════════════════════════════════════════════════════════════════════════
// FLAT RESULTS
// ═══════════════════════════════════════════════════════════════════════════

// ValidationResult is a single diagnostic flattened for reports, with
// one-based line and column numbers as printed by editors and compilers.
type ValidationResult struct {
	// File is the path of the validated file.
	File string `json:"file"`
	// Line is the one-based line where the issue starts.
	Line int `json:"line"`
	// Column is the one-based column (UTF-16 units) where the issue starts.
	Column int `json:"column"`
	// EndLine is the one-based line where the issue ends.
	EndLine int `json:"endLine"`
	// EndColumn is the one-based column where the issue ends, exclusive.
	EndColumn int `json:"endColumn"`
	// Message is a human-readable description of the issue.
	Message string `json:"message"`
	// Severity is "error", "warning", "information" or "hint".
	Severity string `json:"severity"`
	// Source is the engine identifier.
	Source string `json:"source,omitempty"`
}

// Results flattens the diagnostics of r. A failed file yields a single
// error result at 1:1 carrying the failure.
func (r FileResult) Results() []ValidationResult {
	if r.Err != nil {
		return []ValidationResult{{
			File:      r.Path,
			Line:      1,
			Column:    1,
			EndLine:   1,
			EndColumn: 1,
			Message:   r.Err.Error(),
			Severity:  severityName(protocol.DiagnosticSeverityError),
		}}
	}

	results := make([]ValidationResult, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		results = append(results, ValidationResult{
			File:      r.Path,
			Line:      int(d.Range.Start.Line) + 1,
			Column:    int(d.Range.Start.Character) + 1,
			EndLine:   int(d.Range.End.Line) + 1,
			EndColumn: int(d.Range.End.Character) + 1,
			Message:   d.Message,
			Severity:  severityName(d.Severity),
			Source:    d.Source,
		})
	}
	return results
}

func severityName(s protocol.DiagnosticSeverity) string {
	switch s {
	case protocol.DiagnosticSeverityError:
		return "error"
	case protocol.DiagnosticSeverityWarning:
		return "warning"
	case protocol.DiagnosticSeverityInformation:
		return "information"
	case protocol.DiagnosticSeverityHint:
		return "hint"
	}
	return "unknown"
}
