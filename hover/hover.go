// Package hover serves markdown documentation for HTML6 directive
// attributes (if, elsif, else, map) under the editor cursor.
package hover

import (
	"embed"
	"regexp"

	"github.com/abiiranathan/html6-lsp/markup"
)

//go:embed docs/*.md
var docsFS embed.FS

// Doc returns the embedded documentation for a directive attribute, or ""
// when there is none.
func Doc(attr string) string {
	b, err := docsFS.ReadFile("docs/" + attr + ".md")
	if err != nil {
		return ""
	}
	return string(b)
}

// Rule maps attribute occurrences to documentation.
type Rule struct {
	// Pattern is matched against the whole document. Group 1 is the
	// hoverable span. Group 2, when present and matched, names the
	// attribute; otherwise the span text is used.
	Pattern *regexp.Regexp
	// Doc returns the markdown for an attribute name.
	Doc func(attr string) string
}

// DefaultRules returns the rules for the built-in directives.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: regexp.MustCompile(`\s((if|elsif)="[^"]*")`), Doc: Doc},
		{Pattern: regexp.MustCompile(`\s(else)[\s>]`), Doc: Doc},
		{Pattern: regexp.MustCompile(`((map)="[^"]*")`), Doc: Doc},
	}
}

// Provider answers hover queries against a fixed rule set.
type Provider struct {
	rules []Rule
}

// NewProvider returns a provider for rules, or for DefaultRules when none
// are given.
func NewProvider(rules ...Rule) *Provider {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Provider{rules: rules}
}

// At returns the documentation for the first match, in rule order, whose
// span contains offset. Both ends of the span count as inside.
func (p *Provider) At(text string, offset int) (doc string, span markup.Span, ok bool) {
	for _, rule := range p.rules {
		for _, m := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			start, end := m[2], m[3]
			if offset < start || offset > end {
				continue
			}
			name := text[start:end]
			if len(m) >= 6 && m[4] >= 0 {
				name = text[m[4]:m[5]]
			}
			if doc = rule.Doc(name); doc == "" {
				continue
			}
			return doc, markup.Span{Start: start, End: end}, true
		}
	}
	return "", markup.Span{}, false
}
