// Package validator walks a parsed HTML6 document and runs a pipeline of
// validators over every node, collecting editor diagnostics.
package validator

import (
	"github.com/abiiranathan/html6-lsp/markup"
	"go.lsp.dev/protocol"
)

// Source is the identifier stamped on every diagnostic by default.
const Source = "html6-lsp"

// Func is a single validator. It inspects c.Node and appends zero or more
// diagnostics through c.Report. Validators never fail: violations are
// diagnostics.
type Func func(c *Context)

// Pipeline is an ordered list of validators. Every node is handed to every
// member in order.
type Pipeline []Func

// Context is the per-node view handed to every validator.
//
// Invariant: Siblings[Index] == Node.
type Context struct {
	// Text is the whole document. Ranges are always computed against it, also
	// for nodes that were parsed out of a template island.
	Text string
	// Node is the node under inspection.
	Node markup.Node
	// Index is the position of Node within Siblings.
	Index int
	// Siblings is the child list of Node's parent, or the top-level forest.
	Siblings []markup.Node
	// Base is the offset of the forest's own text within Text. It is zero at
	// the top level and the body offset inside template islands.
	Base int

	diagnostics *[]protocol.Diagnostic
	locate      Locator
	source      string
}

// Element returns the node as an element, if it is one.
func (c *Context) Element() (*markup.Element, bool) {
	el, ok := c.Node.(*markup.Element)
	return el, ok
}

// Span shifts a span of the current forest into document coordinates.
func (c *Context) Span(s markup.Span) markup.Span {
	return s.Shift(c.Base)
}

// Locate resolves a target to document offsets with the walk's Locator.
func (c *Context) Locate(t Target) (start, end int) {
	return c.locate(c.Text, t)
}

// Report records a diagnostic covering the located target.
func (c *Context) Report(t Target, severity protocol.DiagnosticSeverity, message string) {
	start, end := c.Locate(t)
	c.ReportAt(start, end, severity, message)
}

// ReportAt records a diagnostic covering the document bytes [start, end).
func (c *Context) ReportAt(start, end int, severity protocol.DiagnosticSeverity, message string) {
	*c.diagnostics = append(*c.diagnostics, protocol.Diagnostic{
		Range:    RangeOf(c.Text, start, end),
		Severity: severity,
		Source:   c.source,
		Message:  message,
	})
}

// Target names what a diagnostic should highlight.
type Target struct {
	// Span is the parser-attached location in document coordinates. The zero
	// Span means the parser did not provide one.
	Span markup.Span
	// Literal is the text to highlight when searching the document.
	Literal string
	// Anchor must immediately precede Literal in a search but is not itself
	// highlighted, e.g. "<" before "template".
	Anchor string
}
