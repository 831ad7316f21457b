package validator

import (
	"fmt"
	"strings"

	"github.com/abiiranathan/html6-lsp/jsexpr"
	"github.com/abiiranathan/html6-lsp/markup"
	"go.lsp.dev/protocol"
)

const (
	msgEmptyInterpolation = "Empty {{}} expression"
	msgEmptyPipeSource    = "Left side of |> cannot be empty"
	msgEmptyPipeStage     = "Empty pipe expression after |> operator"
)

// ValidateExpr checks every {{ ... }} interpolation in text content and in
// non-empty attribute values.
//
// Each interpolation body is trimmed and then:
//   - if empty, reported as a warning
//   - if it has no top-level "|>", parsed as one JavaScript expression
//   - otherwise split into a source and pipe stages. The source must be
//     non-empty and an expression. Each stage is a function name, optionally
//     followed by a space and an argument expression. The first bad stage
//     ends the chain.
//
// Every diagnostic covers the whole interpolation including its braces.
func ValidateExpr(c *Context) {
	switch n := c.Node.(type) {
	case *markup.Text:
		// Text has no attribute-style literal to search for; its span wins
		// under every locator.
		start, _ := LocateSpan(c.Text, Target{Span: c.Span(n.Span), Literal: n.Content})
		checkInterpolations(c, n.Content, start)

	case *markup.Element:
		for _, attr := range n.Attributes {
			if attr.Value == "" {
				continue
			}
			start, _ := c.Locate(Target{Span: c.Span(attr.ValueSpan), Literal: attr.Value})
			checkInterpolations(c, attr.Value, start)
		}
	}
}

// checkInterpolations validates the interpolations of s, which starts at the
// document offset base.
func checkInterpolations(c *Context, s string, base int) {
	for _, span := range FindInterpolations(s) {
		body := strings.TrimSpace(s[span.Start+2 : span.End-2])
		report := func(severity protocol.DiagnosticSeverity, message string) {
			c.ReportAt(base+span.Start, base+span.End, severity, message)
		}

		if body == "" {
			report(protocol.DiagnosticSeverityWarning, msgEmptyInterpolation)
			continue
		}

		stages := jsexpr.SplitPipes(body)
		if len(stages) == 1 {
			if !jsexpr.Valid(body) {
				report(protocol.DiagnosticSeverityError, invalidInterpolation(body))
			}
			continue
		}
		checkPipe(stages, report)
	}
}

func checkPipe(stages []string, report func(protocol.DiagnosticSeverity, string)) {
	source, rest := stages[0], stages[1:]
	if source == "" {
		report(protocol.DiagnosticSeverityError, msgEmptyPipeSource)
		return
	}
	if !jsexpr.Valid(source) {
		report(protocol.DiagnosticSeverityError, invalidInterpolation(source))
	}

	for _, stage := range rest {
		if stage == "" {
			report(protocol.DiagnosticSeverityError, msgEmptyPipeStage)
			return
		}

		name, args := jsexpr.SplitStage(stage)
		if !jsexpr.IsIdentifier(name) {
			report(protocol.DiagnosticSeverityError,
				fmt.Sprintf("Invalid pipe name: \"%s\".\n\nMust be a valid JavaScript function name.", name))
			return
		}
		if args != "" && !jsexpr.Valid(args) {
			report(protocol.DiagnosticSeverityError,
				fmt.Sprintf("Invalid pipe arguments for \"%s\": \"%s\".\n\nArguments must be valid JavaScript expressions.", name, args))
			return
		}
	}
}

func invalidInterpolation(expr string) string {
	return fmt.Sprintf("Invalid expression inside {{ }}: \"%s\".\n\nMust be a valid JavaScript expression.", expr)
}

// FindInterpolations returns the byte spans of every {{ ... }} in s,
// delimiters included, in order of appearance.
//
// The body is at least one byte long. An interpolation closes at the first
// "}}" that is not followed by another '}', so in
//
//	{{ value |> fmt { a: 1 }}}
//
// the last two braces close it and the first one belongs to the argument.
// Scanning resumes after each match.
func FindInterpolations(s string) []markup.Span {
	var spans []markup.Span

	cur := 0
	for cur < len(s) {
		openRel := strings.Index(s[cur:], "{{")
		if openRel == -1 {
			break
		}
		openIdx := cur + openRel

		closeIdx := closingBraces(s, openIdx+3)
		if closeIdx == -1 {
			// No later "{{" can close either: its candidates are a subset.
			break
		}

		spans = append(spans, markup.Span{Start: openIdx, End: closeIdx + 2})
		cur = closeIdx + 2
	}

	return spans
}

// closingBraces returns the index of the first "}}" at or after from that is
// not followed by a third '}', or -1.
func closingBraces(s string, from int) int {
	for i := from; i+1 < len(s); i++ {
		if s[i] != '}' || s[i+1] != '}' {
			continue
		}
		if i+2 < len(s) && s[i+2] == '}' {
			continue
		}
		return i
	}
	return -1
}
