package validator

import (
	"fmt"
	"strings"
)

// Locator maps a Target to the document bytes a diagnostic covers.
type Locator func(text string, t Target) (start, end int)

// Locator names accepted by ParseLocator and the configuration file.
const (
	LocateBySpan            = "span"
	LocateByFirstOccurrence = "first-occurrence"
)

// LocateSpan uses the parser-attached span when there is one and falls back
// to the first textual occurrence otherwise. It is the default.
func LocateSpan(text string, t Target) (int, int) {
	if !t.Span.IsZero() {
		return t.Span.Start, t.Span.End
	}
	return LocateFirstOccurrence(text, t)
}

// LocateFirstOccurrence highlights the first occurrence of Anchor+Literal in
// the whole document, ignoring spans. Repeated literals therefore all point
// at the first one. A literal that cannot be found yields an empty range at
// the start of the document.
func LocateFirstOccurrence(text string, t Target) (int, int) {
	i := strings.Index(text, t.Anchor+t.Literal)
	if i < 0 {
		return 0, 0
	}
	start := i + len(t.Anchor)
	return start, start + len(t.Literal)
}

// ParseLocator returns the locator registered under name.
func ParseLocator(name string) (Locator, error) {
	switch name {
	case "", LocateBySpan:
		return LocateSpan, nil
	case LocateByFirstOccurrence:
		return LocateFirstOccurrence, nil
	}
	return nil, fmt.Errorf("validator: unknown locate mode %q", name)
}
