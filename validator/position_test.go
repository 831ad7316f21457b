package validator

import (
	"testing"

	"go.lsp.dev/protocol"
)

func TestPositionOf(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   protocol.Position
	}{
		{"start", "hello\nworld", 0, protocol.Position{Line: 0, Character: 0}},
		{"second line", "hello\nworld", 7, protocol.Position{Line: 1, Character: 1}},
		{"right after break", "hello\nworld", 6, protocol.Position{Line: 1, Character: 0}},
		{"on the break", "hello\nworld", 5, protocol.Position{Line: 0, Character: 5}},
		{"crlf counts once", "a\r\nb\r\nc", 6, protocol.Position{Line: 2, Character: 0}},
		{"between cr and lf", "ab\r\nc", 3, protocol.Position{Line: 0, Character: 3}},
		{"end of text", "ab\ncd", 5, protocol.Position{Line: 1, Character: 2}},
		{"negative clamps", "abc", -4, protocol.Position{Line: 0, Character: 0}},
		{"past end clamps", "ab\nc", 99, protocol.Position{Line: 1, Character: 1}},
		{"two-byte rune is one unit", "é<", len("é"), protocol.Position{Line: 0, Character: 1}},
		{"astral rune is two units", "😀x", len("😀x"), protocol.Position{Line: 0, Character: 3}},
		{"empty text", "", 0, protocol.Position{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PositionOf(tt.text, tt.offset); got != tt.want {
				t.Errorf("PositionOf(%q, %d) = %+v, want %+v", tt.text, tt.offset, got, tt.want)
			}
		})
	}
}

func TestOffsetOfInvertsPositionOf(t *testing.T) {
	texts := []string{
		"",
		"single line",
		"<ul>\n  <li else>x</li>\n</ul>\n",
		"windows\r\nline\r\nendings",
		"ünïcödé\n😀 {{ x }}\n\ttab",
	}

	for _, text := range texts {
		for offset := 0; offset <= len(text); offset++ {
			if offset < len(text) && !isRuneStart(text[offset]) {
				continue
			}
			pos := PositionOf(text, offset)
			if got := OffsetOf(text, pos); got != offset {
				t.Errorf("OffsetOf(%q, %+v) = %d, want %d", text, pos, got, offset)
			}
		}
	}
}

func TestOffsetOfClamps(t *testing.T) {
	text := "ab\ncd"
	tests := []struct {
		pos  protocol.Position
		want int
	}{
		{protocol.Position{Line: 0, Character: 99}, 2},
		{protocol.Position{Line: 7, Character: 0}, len(text)},
		{protocol.Position{Line: 1, Character: 99}, len(text)},
	}
	for _, tt := range tests {
		if got := OffsetOf(text, tt.pos); got != tt.want {
			t.Errorf("OffsetOf(%q, %+v) = %d, want %d", text, tt.pos, got, tt.want)
		}
	}
}

func TestRangeOf(t *testing.T) {
	text := "<p>\n<b else>x</b>"
	got := RangeOf(text, 7, 11)
	want := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 3},
		End:   protocol.Position{Line: 1, Character: 7},
	}
	if got != want {
		t.Errorf("RangeOf = %+v, want %+v", got, want)
	}
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
