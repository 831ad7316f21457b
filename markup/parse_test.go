package markup

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Attribute
	}{
		{
			name: "boolean attribute has no value",
			text: `<div else></div>`,
			want: []Attribute{
				{Key: "else", Span: Span{Start: 5, End: 9}},
			},
		},
		{
			name: "empty value is kept apart from boolean",
			text: `<li if=""></li>`,
			want: []Attribute{
				{Key: "if", Value: "", HasValue: true, Span: Span{Start: 4, End: 9}, ValueSpan: Span{Start: 8, End: 8}},
			},
		},
		{
			name: "quoted value may contain angle brackets",
			text: `<div if="count > 0" id='x'>`,
			want: []Attribute{
				{Key: "if", Value: "count > 0", HasValue: true, Span: Span{Start: 5, End: 19}, ValueSpan: Span{Start: 9, End: 18}},
				{Key: "id", Value: "x", HasValue: true, Span: Span{Start: 20, End: 26}, ValueSpan: Span{Start: 24, End: 25}},
			},
		},
		{
			name: "unquoted value and spaces around equals",
			text: `<input type = text disabled>`,
			want: []Attribute{
				{Key: "type", Value: "text", HasValue: true, Span: Span{Start: 7, End: 18}, ValueSpan: Span{Start: 14, End: 18}},
				{Key: "disabled", Span: Span{Start: 19, End: 27}},
			},
		},
		{
			name: "keys are lowercased and order is preserved",
			text: `<div MAP="a of b" If="c"></div>`,
			want: []Attribute{
				{Key: "map", Value: "a of b", HasValue: true, Span: Span{Start: 5, End: 17}, ValueSpan: Span{Start: 10, End: 16}},
				{Key: "if", Value: "c", HasValue: true, Span: Span{Start: 18, End: 24}, ValueSpan: Span{Start: 22, End: 23}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(nodes) == 0 {
				t.Fatalf("expected at least one node")
			}
			el, ok := nodes[0].(*Element)
			if !ok {
				t.Fatalf("expected *Element, got %T", nodes[0])
			}
			if diff := cmp.Diff(tt.want, el.Attributes); diff != "" {
				t.Errorf("attributes mismatch (-want +got):\n%s", diff)
			}
			for _, a := range el.Attributes {
				if got := tt.text[a.Span.Start:a.Span.End]; !strings.EqualFold(got[:len(a.Key)], a.Key) {
					t.Errorf("span %v does not start at key %q: %q", a.Span, a.Key, got)
				}
			}
		})
	}
}

func TestParseTree(t *testing.T) {
	text := "<ul>\n  <li if=\"a\">one</li>\n  <li else>two</li>\n</ul>"
	nodes, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 root, got %d", len(nodes))
	}
	ul := nodes[0].(*Element)
	if ul.TagName != "ul" {
		t.Errorf("TagName = %q, want ul", ul.TagName)
	}
	if ul.Span != (Span{Start: 0, End: len(text)}) {
		t.Errorf("ul span = %v, want [0,%d)", ul.Span, len(text))
	}

	var kinds []Kind
	for _, c := range ul.Children {
		kinds = append(kinds, c.Kind())
	}
	want := []Kind{KindText, KindElement, KindText, KindElement, KindText}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("children kinds mismatch (-want +got):\n%s", diff)
	}

	li := ul.Children[3].(*Element)
	if !li.HasAttr("else") {
		t.Errorf("expected else attribute on second li")
	}
	if got := text[li.Span.Start:li.Span.End]; got != "<li else>two</li>" {
		t.Errorf("li span covers %q", got)
	}
}

func TestParseTemplateIsland(t *testing.T) {
	text := `<template is="card"><div if="x">a</div><div else>b</div></template><p>after</p>`
	nodes, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(nodes))
	}

	tpl := nodes[0].(*Element)
	if len(tpl.Children) != 1 {
		t.Fatalf("template should hold one raw text child, got %d", len(tpl.Children))
	}
	body, ok := tpl.Children[0].(*Text)
	if !ok {
		t.Fatalf("template child is %T, want *Text", tpl.Children[0])
	}
	if body.Content != `<div if="x">a</div><div else>b</div>` {
		t.Errorf("island content = %q", body.Content)
	}
	if got := text[body.Span.Start:body.Span.End]; got != body.Content {
		t.Errorf("island span covers %q", got)
	}
	if got := text[tpl.Span.Start:tpl.Span.End]; got[len(got)-len("</template>"):] != "</template>" {
		t.Errorf("template span should end at its end tag, covers %q", got)
	}

	p := nodes[1].(*Element)
	if p.TagName != "p" || p.Span.Start != tpl.Span.End {
		t.Errorf("paragraph after island parsed as %q at %v", p.TagName, p.Span)
	}
}

func TestParseEdgeCases(t *testing.T) {
	t.Run("unclosed template swallows the rest", func(t *testing.T) {
		nodes, err := Parse(`<template is="x"><div>`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		tpl := nodes[0].(*Element)
		if len(tpl.Children) != 1 || tpl.Children[0].(*Text).Content != "<div>" {
			t.Errorf("unexpected children %#v", tpl.Children)
		}
	})

	t.Run("empty template has no children", func(t *testing.T) {
		nodes, err := Parse(`<template></template>`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if n := len(nodes[0].(*Element).Children); n != 0 {
			t.Errorf("expected no children, got %d", n)
		}
	})

	t.Run("end tag matching is case insensitive", func(t *testing.T) {
		nodes, err := Parse(`<TEMPLATE is="x">body</Template ><b></b>`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(nodes) != 2 {
			t.Fatalf("expected 2 roots, got %d", len(nodes))
		}
	})

	t.Run("void elements take no children", func(t *testing.T) {
		nodes, err := Parse(`<div><br><img src="a.png"><span>x</span></div>`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		div := nodes[0].(*Element)
		if len(div.Children) != 3 {
			t.Fatalf("expected 3 children, got %d", len(div.Children))
		}
	})

	t.Run("script body is raw text", func(t *testing.T) {
		nodes, err := Parse(`<script>if (a < b) { x = "<div else>" }</script>`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		script := nodes[0].(*Element)
		if len(script.Children) != 1 || script.Children[0].Kind() != KindText {
			t.Fatalf("expected a single text child, got %#v", script.Children)
		}
	})

	t.Run("comments are dropped and offsets survive", func(t *testing.T) {
		text := `<!-- note --><div if="a"></div>`
		nodes, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		div := nodes[0].(*Element)
		a, _ := div.Attr("if")
		if got := text[a.Span.Start:a.Span.End]; got != `if="a"` {
			t.Errorf("attribute span covers %q", got)
		}
	})

	t.Run("stray end tags are ignored", func(t *testing.T) {
		nodes, err := Parse(`</p><div></span></div>`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(nodes) != 1 || nodes[0].(*Element).TagName != "div" {
			t.Errorf("unexpected roots %#v", nodes)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		nodes, err := Parse("")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("expected no nodes, got %d", len(nodes))
		}
	})
}

func TestSpan(t *testing.T) {
	s := Span{Start: 3, End: 7}
	if s.IsZero() {
		t.Errorf("non-zero span reported as zero")
	}
	if got := s.Shift(10); got != (Span{Start: 13, End: 17}) {
		t.Errorf("Shift = %v", got)
	}
	if !(Span{}).Shift(5).IsZero() {
		t.Errorf("unknown span must stay unknown after Shift")
	}
	if !s.Contains(3) || !s.Contains(7) || s.Contains(8) {
		t.Errorf("Contains should include both ends")
	}
}
