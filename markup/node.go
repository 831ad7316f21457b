// Package markup turns HTML6 template text into a forest of element and text
// nodes.
//
// The parser never rejects markup that a browser would recover from. Every
// node and attribute carries the byte span it was read from so diagnostics
// can point at the exact source location.
package markup

import "strings"

// Kind discriminates the two node shapes.
type Kind int

const (
	KindElement Kind = iota + 1
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Node is either an *Element or a *Text. The interface is sealed: no other
// package can add node shapes, so a type switch over both cases is exhaustive.
type Node interface {
	Kind() Kind
	Position() Span
	node()
}

// Span is a half-open byte range [Start, End) into the parsed text.
// The zero Span means the position is unknown.
type Span struct {
	Start int
	End   int
}

// IsZero reports whether the span is unknown.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Shift returns the span moved by delta bytes. Unknown spans stay unknown.
func (s Span) Shift(delta int) Span {
	if s.IsZero() {
		return s
	}
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Contains reports whether offset falls inside the span, both ends inclusive.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Attribute is a single attribute in source order.
//
// HasValue distinguishes a boolean attribute (<div else>, HasValue false)
// from an explicitly empty one (<div if="">, HasValue true, Value "").
type Attribute struct {
	Key      string
	Value    string
	HasValue bool

	// Span covers the whole assignment: key, '=', and the quoted value.
	Span Span
	// ValueSpan covers the value without its quotes.
	ValueSpan Span
}

// Literal renders the attribute the way it is searched for in the document
// when no span is available: key="value", or the bare key.
func (a Attribute) Literal() string {
	if !a.HasValue {
		return a.Key
	}
	return a.Key + `="` + a.Value + `"`
}

// Element is a tag with its attributes and children.
type Element struct {
	TagName    string
	Attributes []Attribute
	Children   []Node

	// Span runs from the '<' of the start tag to the '>' of the end tag, or
	// to the end of the input when the element is never closed.
	Span Span
	// NameSpan covers the tag name inside the start tag.
	NameSpan Span
}

func (*Element) Kind() Kind       { return KindElement }
func (e *Element) Position() Span { return e.Span }
func (*Element) node()           {}

// Attr returns the first attribute named key.
func (e *Element) Attr(key string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

// HasAttr reports whether any of keys is present on the element.
func (e *Element) HasAttr(keys ...string) bool {
	for _, a := range e.Attributes {
		for _, k := range keys {
			if a.Key == k {
				return true
			}
		}
	}
	return false
}

// Text is raw character data, including the bodies of raw-text elements
// such as <template>, <script> and <style>.
type Text struct {
	Content string
	Span    Span
}

func (*Text) Kind() Kind       { return KindText }
func (t *Text) Position() Span { return t.Span }
func (*Text) node()            {}

// IsBlank reports whether the text holds only whitespace.
func (t *Text) IsBlank() bool {
	return strings.TrimSpace(t.Content) == ""
}

// Parser is the capability the walker depends on. It is invoked for the
// document itself and again for every template island.
type Parser interface {
	Parse(text string) ([]Node, error)
}

// ParserFunc adapts an ordinary function to the Parser interface.
type ParserFunc func(text string) ([]Node, error)

// Parse calls f(text).
func (f ParserFunc) Parse(text string) ([]Node, error) {
	return f(text)
}

// Default is the x/net/html backed parser.
var Default Parser = ParserFunc(Parse)
