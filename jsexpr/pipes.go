package jsexpr

import "strings"

// PipeOperator separates the stages of a pipe expression.
const PipeOperator = "|>"

// SplitPipes splits body on every top-level "|>" and trims each segment.
// Operators inside string or template literals, or nested in (), [] or {},
// do not split. A body without a top-level operator yields one segment.
//
//	SplitPipes(`user.name |> truncate 10 |> upper`)
//	// ["user.name", "truncate 10", "upper"]
func SplitPipes(body string) []string {
	var (
		segments []string
		depth    int
		quote    byte
		last     int
	)

	for i := 0; i < len(body); i++ {
		c := body[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 && strings.HasPrefix(body[i:], PipeOperator) {
				segments = append(segments, strings.TrimSpace(body[last:i]))
				i += len(PipeOperator) - 1
				last = i + 1
			}
		}
	}

	return append(segments, strings.TrimSpace(body[last:]))
}

// SplitStage splits a pipe stage into its function name and the argument
// text after the first space. args is empty when the stage has none.
func SplitStage(stage string) (name, args string) {
	j := strings.IndexByte(stage, ' ')
	if j < 0 {
		return stage, ""
	}
	return strings.TrimSpace(stage[:j]), strings.TrimSpace(stage[j+1:])
}

// IsIdentifier reports whether name matches [A-Za-z_$][A-Za-z0-9_$]*.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
