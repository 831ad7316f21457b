package validator

import (
	"fmt"
	"strings"

	"github.com/abiiranathan/html6-lsp/jsexpr"
	"github.com/abiiranathan/html6-lsp/markup"
	"go.lsp.dev/protocol"
)

// ValidateIf checks the value of every "if" and "elsif" attribute.
//
//   - boolean attribute (<div if>): warning, it must have a value
//   - blank value (<div if="  ">): warning, it cannot be empty
//   - otherwise the value must be a JavaScript expression, else an error
//
// Each attribute is checked independently, so an element carrying both
// may get two diagnostics. Ranges cover the whole assignment.
func ValidateIf(c *Context) {
	el, ok := c.Element()
	if !ok {
		return
	}

	for _, attr := range el.Attributes {
		if attr.Key != "if" && attr.Key != "elsif" {
			continue
		}

		target := Target{Span: c.Span(attr.Span), Literal: attr.Literal()}
		switch {
		case !attr.HasValue:
			c.Report(target, protocol.DiagnosticSeverityWarning,
				fmt.Sprintf("%s attributes must have a value", attr.Key))
		case strings.TrimSpace(attr.Value) == "":
			c.Report(target, protocol.DiagnosticSeverityWarning,
				fmt.Sprintf("%s attributes cannot be empty", attr.Key))
		case !jsexpr.Valid(attr.Value):
			c.Report(target, protocol.DiagnosticSeverityError,
				fmt.Sprintf("Invalid %s expression: \"%s\".\n\nMust be a valid JavaScript expression.", attr.Key, attr.Value))
		}
	}
}

// ValidateElsePosition checks that an element carrying "else" or "elsif"
// directly follows a conditional element.
//
// The nearest preceding element sibling is found by skipping text nodes,
// and it must carry "if" or "elsif". Siblings are always those of the
// immediate parent, so an island never sees the elements around its
// <template>. With both attributes present the finding is reported under
// "else". The range covers the bare attribute name.
func ValidateElsePosition(c *Context) {
	el, ok := c.Element()
	if !ok {
		return
	}

	attr, ok := el.Attr("else")
	if !ok {
		if attr, ok = el.Attr("elsif"); !ok {
			return
		}
	}

	if prev := previousElement(c.Siblings, c.Index); prev != nil && prev.HasAttr("if", "elsif") {
		return
	}

	var name markup.Span
	if !attr.Span.IsZero() {
		name = markup.Span{Start: attr.Span.Start, End: attr.Span.Start + len(attr.Key)}
	}
	c.Report(Target{Span: c.Span(name), Literal: attr.Key}, protocol.DiagnosticSeverityError,
		fmt.Sprintf(`%s must follow an element with "if" or "elsif".`, attr.Key))
}

func previousElement(siblings []markup.Node, index int) *markup.Element {
	for i := index - 1; i >= 0; i-- {
		if el, ok := siblings[i].(*markup.Element); ok {
			return el
		}
	}
	return nil
}
