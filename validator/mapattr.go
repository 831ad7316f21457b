package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abiiranathan/html6-lsp/jsexpr"
	"go.lsp.dev/protocol"
)

var (
	mapSeparator = regexp.MustCompile(`\s+of\s+`)
	mapBindings  = regexp.MustCompile(`^\w+(,\s*\w+)?$`)
)

// ValidateMap checks the iteration syntax of every "map" attribute:
//
//	map="item of items"
//	map="item, i of group.items"
//
// A missing or blank value is a warning. Otherwise the value must split on
// " of " into exactly two parts, the left one binding an item and an
// optional index, the right one being a JavaScript expression. Only the
// first problem is reported. The range covers the whole assignment.
func ValidateMap(c *Context) {
	el, ok := c.Element()
	if !ok {
		return
	}

	for _, attr := range el.Attributes {
		if attr.Key != "map" {
			continue
		}

		target := Target{Span: c.Span(attr.Span), Literal: attr.Literal()}
		if msg, severity, bad := checkMap(attr.Value); bad {
			c.Report(target, severity, msg)
		}
	}
}

func checkMap(raw string) (string, protocol.DiagnosticSeverity, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "Map attribute must have a value", protocol.DiagnosticSeverityWarning, true
	}

	parts := mapSeparator.Split(value, -1)
	if len(parts) != 2 {
		return fmt.Sprintf(`Invalid map syntax: "%s". Expected "item of items" or "item, i of items".`, value),
			protocol.DiagnosticSeverityError, true
	}

	left, right := parts[0], parts[1]
	if !mapBindings.MatchString(left) {
		return fmt.Sprintf(`Invalid map variable part: "%s". Must be "item" or "item, i".`, left),
			protocol.DiagnosticSeverityError, true
	}
	if !jsexpr.Valid(right) {
		return fmt.Sprintf(`Invalid expression in map items: "%s". Must be a valid JavaScript expression.`, right),
			protocol.DiagnosticSeverityError, true
	}
	return "", 0, false
}
