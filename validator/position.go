package validator

import (
	"math"
	"strings"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"
)

// PositionOf converts a byte offset in text into a zero-based line and
// character.
//
// The line is the number of line breaks before offset. "\r\n" counts once
// because only '\n' ends a line. The character is the length of the rest of
// the line before offset, counted in UTF-16 code units as editors expect.
//
// Offsets outside [0, len(text)] are clamped.
func PositionOf(text string, offset int) protocol.Position {
	offset = clamp(offset, 0, len(text))
	prefix := text[:offset]

	line := strings.Count(prefix, "\n")
	lastLine := prefix[strings.LastIndexByte(prefix, '\n')+1:]

	return protocol.Position{
		Line:      toUint32(line),
		Character: toUint32(utf16Len(lastLine)),
	}
}

// OffsetOf is the inverse of PositionOf. A line past the end of text maps to
// len(text); a character past the end of its line maps to the line break.
func OffsetOf(text string, pos protocol.Position) int {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}

	var units uint32
	for i, r := range text[offset:] {
		if r == '\n' {
			return offset + i
		}
		w := uint32(1)
		if r > 0xFFFF {
			w = 2
		}
		if units+w > pos.Character {
			return offset + i
		}
		units += w
	}
	return len(text)
}

// RangeOf converts the byte span [start, end) of text into an editor range.
func RangeOf(text string, start, end int) protocol.Range {
	return protocol.Range{
		Start: PositionOf(text, start),
		End:   PositionOf(text, end),
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
			continue
		}
		n++
	}
	return n
}

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return math.MaxUint32
	}
	return v
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
