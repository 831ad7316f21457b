package validator

import (
	"fmt"

	"github.com/abiiranathan/html6-lsp/markup"
	"go.lsp.dev/protocol"
)

// islandTag is the element whose text children hold unparsed markup.
const islandTag = "template"

// Walker runs a pipeline over every node of a document.
//
// The zero value is usable: it parses with markup.Default, runs no
// validators, locates by span and stamps diagnostics with Source.
type Walker struct {
	// Parser parses the document and every template island.
	Parser markup.Parser
	// Pipeline is applied to each node in order.
	Pipeline Pipeline
	// Locate resolves diagnostic targets. Nil means LocateSpan.
	Locate Locator
	// Source is stamped on every diagnostic. Empty means Source.
	Source string
}

// Walk parses text with parser and runs pipeline over the resulting forest.
// It is shorthand for Walker{Parser: parser, Pipeline: pipeline}.Walk(text).
func Walk(text string, parser markup.Parser, pipeline Pipeline) ([]protocol.Diagnostic, error) {
	return Walker{Parser: parser, Pipeline: pipeline}.Walk(text)
}

// Walk visits the document depth-first in pre-order and hands every node to
// every validator, in pipeline order, with one shared diagnostics list.
//
// Template islands: for a <template> element, each non-blank text child is
// re-parsed with the same parser as an independent forest and walked with
// the same pipeline. Spans inside an island are relative to the island text,
// so the walk carries the island's offset as Context.Base. Once the islands
// are done the element's ordinary children are walked as usual.
//
// Parameters:
//   - text: the full document
//
// Returns:
//   - diagnostics in the order validators reported them; never nil on
//     success, so an empty document publishes an empty list
//   - an error only when the parser fails, on the document or any island.
//     Malformed template syntax is never an error.
//
// Thread-safety: a Walker holds no mutable state; concurrent calls are safe
// as long as the parser and validators are.
func (w Walker) Walk(text string) ([]protocol.Diagnostic, error) {
	nodes, err := w.parser().Parse(text)
	if err != nil {
		return nil, fmt.Errorf("validator: parse document: %w", err)
	}

	diagnostics := []protocol.Diagnostic{}
	run := &walk{
		Walker:      w,
		text:        text,
		diagnostics: &diagnostics,
	}
	if err := run.forest(nodes, 0); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func (w Walker) parser() markup.Parser {
	if w.Parser == nil {
		return markup.Default
	}
	return w.Parser
}

func (w Walker) locator() Locator {
	if w.Locate == nil {
		return LocateSpan
	}
	return w.Locate
}

func (w Walker) source() string {
	if w.Source == "" {
		return Source
	}
	return w.Source
}

// walk is the state of a single Walk call.
type walk struct {
	Walker
	text        string
	diagnostics *[]protocol.Diagnostic
}

func (r *walk) forest(siblings []markup.Node, base int) error {
	for i, node := range siblings {
		c := &Context{
			Text:        r.text,
			Node:        node,
			Index:       i,
			Siblings:    siblings,
			Base:        base,
			diagnostics: r.diagnostics,
			locate:      r.locator(),
			source:      r.source(),
		}
		for _, validate := range r.Pipeline {
			validate(c)
		}

		switch n := node.(type) {
		case *markup.Text:
			continue
		case *markup.Element:
			if n.TagName == islandTag {
				if err := r.islands(n, base); err != nil {
					return err
				}
			}
			if err := r.forest(n.Children, base); err != nil {
				return err
			}
		}
	}
	return nil
}

// islands re-parses and walks the non-blank text children of el.
func (r *walk) islands(el *markup.Element, base int) error {
	for _, child := range el.Children {
		text, ok := child.(*markup.Text)
		if !ok || text.IsBlank() {
			continue
		}

		islandBase := base + text.Span.Start
		nodes, err := r.parser().Parse(text.Content)
		if err != nil {
			return fmt.Errorf("validator: parse template island at offset %d: %w", islandBase, err)
		}
		if err := r.forest(nodes, islandBase); err != nil {
			return err
		}
	}
	return nil
}
