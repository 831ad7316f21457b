package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never take children, with or without a trailing "/>".
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// islandTag is the element whose body the tokenizer must not look into.
// Its content is kept verbatim as a single text child.
const islandTag = "template"

// Parse parses text into an ordered forest of nodes.
//
// Tokenizing is delegated to golang.org/x/net/html, which already treats the
// bodies of <script> and <style> as raw text. Attributes are re-read from the
// raw start tag so that boolean attributes (<div else>) stay distinguishable
// from empty ones (<div if="">), and every attribute gets a byte span.
//
// Unlike a browser, the body of <template> is not tokenized: it becomes one
// text child holding the literal markup, which callers re-parse on demand.
// Comments and doctypes are dropped. Unmatched end tags are ignored and
// unclosed elements extend to the end of the input.
//
// The only error source is the tokenizer itself; malformed markup never
// produces an error.
func Parse(text string) ([]Node, error) {
	p := &parser{text: text}
	offset := 0
	for offset < len(text) {
		next, err := p.tokenize(offset)
		if err != nil {
			return nil, err
		}
		offset = next
	}
	p.closeAll(len(text))
	return p.roots, nil
}

type parser struct {
	text  string
	roots []Node
	stack []*Element
}

// tokenize runs a tokenizer over text[from:] and returns the offset where
// tokenizing must resume. It stops early right after a template island.
func (p *parser) tokenize(from int) (int, error) {
	z := html.NewTokenizer(strings.NewReader(p.text[from:]))
	offset := from

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("markup: tokenize at offset %d: %w", offset, err)
			}
			return len(p.text), nil
		}

		// Raw must be copied before TagName, which lowercases in place.
		raw := string(z.Raw())
		start := offset
		offset += len(raw)

		switch tt {
		case html.TextToken:
			p.append(&Text{Content: raw, Span: Span{Start: start, End: offset}})

		case html.StartTagToken, html.SelfClosingTagToken:
			el := scanStartTag(raw, start)
			el.Span = Span{Start: start, End: offset}
			p.append(el)

			if tt == html.SelfClosingTagToken || voidElements[el.TagName] {
				continue
			}
			if el.TagName == islandTag {
				return p.readIsland(el, offset), nil
			}
			p.stack = append(p.stack, el)

		case html.EndTagToken:
			name, _ := z.TagName()
			p.close(string(name), start, offset)
		}
	}
}

// readIsland attaches the verbatim body of a template element starting at
// bodyStart and returns the offset just past its end tag.
func (p *parser) readIsland(el *Element, bodyStart int) int {
	closeAt := indexEndTag(p.text, bodyStart, islandTag)
	bodyEnd, end := closeAt, len(p.text)
	if closeAt < 0 {
		bodyEnd = len(p.text)
	} else if gt := strings.IndexByte(p.text[closeAt:], '>'); gt >= 0 {
		end = closeAt + gt + 1
	}

	if bodyEnd > bodyStart {
		el.Children = append(el.Children, &Text{
			Content: p.text[bodyStart:bodyEnd],
			Span:    Span{Start: bodyStart, End: bodyEnd},
		})
	}
	el.Span.End = end
	return end
}

func (p *parser) append(n Node) {
	if len(p.stack) == 0 {
		p.roots = append(p.roots, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	top.Children = append(top.Children, n)
}

// close pops the innermost open element named name. Elements left open
// above it end where the end tag starts.
func (p *parser) close(name string, tagStart, tagEnd int) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].TagName != name {
			continue
		}
		for _, open := range p.stack[i+1:] {
			open.Span.End = tagStart
		}
		p.stack[i].Span.End = tagEnd
		p.stack = p.stack[:i]
		return
	}
}

func (p *parser) closeAll(end int) {
	for _, open := range p.stack {
		open.Span.End = end
	}
	p.stack = nil
}

// ═══════════════════════════════════════════════════════════════════════════
// RAW TAG SCANNING
// ═══════════════════════════════════════════════════════════════════════════

// scanStartTag reads the tag name and attributes from a raw start tag such
// as `<div if="a > b" else>`. base is the offset of raw within the document.
//
// The rules mirror the x/net/html tokenizer so both agree on where every
// attribute begins and ends:
//   - a name runs until whitespace, '/', '>' or '=' (a leading '=' is part of it)
//   - '=' may be surrounded by whitespace
//   - values are double-quoted, single-quoted, or run until whitespace or '>'
func scanStartTag(raw string, base int) *Element {
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	el := &Element{
		TagName:  strings.ToLower(raw[1:i]),
		NameSpan: Span{Start: base + 1, End: base + i},
	}

	for i < len(raw) {
		c := raw[i]
		if isSpace(c) || c == '/' {
			i++
			continue
		}
		if c == '>' {
			break
		}

		keyStart := i
		i++
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' && raw[i] != '=' {
			i++
		}
		attr := Attribute{
			Key:  strings.ToLower(raw[keyStart:i]),
			Span: Span{Start: base + keyStart, End: base + i},
		}

		j := skipSpace(raw, i)
		if j < len(raw) && raw[j] == '=' {
			attr.HasValue = true
			j = skipSpace(raw, j+1)
			valueStart, valueEnd := j, j
			switch {
			case j >= len(raw) || raw[j] == '>':
				i = j
			case raw[j] == '"' || raw[j] == '\'':
				valueStart = j + 1
				if q := strings.IndexByte(raw[valueStart:], raw[j]); q >= 0 {
					valueEnd = valueStart + q
					i = valueEnd + 1
				} else {
					valueEnd = len(raw)
					i = len(raw)
				}
			default:
				valueEnd = j
				for valueEnd < len(raw) && !isSpace(raw[valueEnd]) && raw[valueEnd] != '>' {
					valueEnd++
				}
				i = valueEnd
			}
			attr.Value = raw[valueStart:valueEnd]
			attr.ValueSpan = Span{Start: base + valueStart, End: base + valueEnd}
			attr.Span.End = base + i
		}

		el.Attributes = append(el.Attributes, attr)
	}

	return el
}

// indexEndTag finds the next `</name` at or after from that is followed by
// whitespace, '/', '>' or the end of input, ignoring ASCII case.
func indexEndTag(text string, from int, name string) int {
	needle := "</" + name
	for i := from; i+len(needle) <= len(text); i++ {
		if text[i] != '<' || !strings.EqualFold(text[i:i+len(needle)], needle) {
			continue
		}
		after := i + len(needle)
		if after == len(text) || isSpace(text[after]) || text[after] == '/' || text[after] == '>' {
			return i
		}
	}
	return -1
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
