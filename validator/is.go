package validator

import "go.lsp.dev/protocol"

const (
	msgIsMissing = `template tags must have a non-empty "is" attribute indicating its name.`
	msgIsEmpty   = `"is" attributes on template tags must have a value.`
)

// ValidateIs checks that every <template> is named by a non-empty "is"
// attribute. Both findings are warnings and highlight the tag name.
func ValidateIs(c *Context) {
	el, ok := c.Element()
	if !ok || el.TagName != islandTag {
		return
	}

	target := Target{
		Span:    c.Span(el.NameSpan),
		Literal: islandTag,
		Anchor:  "<",
	}

	if len(el.Attributes) == 0 {
		c.Report(target, protocol.DiagnosticSeverityWarning, msgIsMissing)
		return
	}
	if is, ok := el.Attr("is"); !ok || is.Value == "" {
		c.Report(target, protocol.DiagnosticSeverityWarning, msgIsEmpty)
	}
}

