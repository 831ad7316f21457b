package jsexpr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		expr  string
		valid bool
	}{
		{"count > 0", true},
		{"user.isAdmin()", true},
		{"a && (b || !c)", true},
		{"x ? 'yes' : 'no'", true},
		{"items[0].name", true},
		{"user?.profile?.name", true},
		{"{ a: 1, b: [2, 3] }", true},
		{"'.'", true},
		{"`hello ${name}`", true},
		{"value\n  .trim()", true},

		{"user.isAdmin(", false},
		{"a b", false},
		{"if (x) y", false},
		{"", false},
		{"a +", false},
		{"0esc", false},
		{"a // comment", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := Check(tt.expr)
			if got := err == nil; got != tt.valid {
				t.Errorf("Check(%q) = %v, want valid=%v", tt.expr, err, tt.valid)
			}
		})
	}
}

func TestCheckRejectsWrapperEscape(t *testing.T) {
	for _, expr := range []string{
		"a); (b",
		"a); return (b",
		"a); function f() {} (b",
	} {
		err := Check(expr)
		if err == nil {
			t.Errorf("Check(%q) accepted text that is not a single expression", expr)
			continue
		}
		if !errors.Is(err, ErrNotExpression) {
			t.Logf("Check(%q) rejected by the grammar: %v", expr, err)
		}
	}
}

func TestCheckDoesNotExecute(t *testing.T) {
	// A valid expression with side effects only needs to parse.
	if err := Check("globalThis.__touched = true"); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestSplitPipes(t *testing.T) {
	tests := []struct {
		body string
		want []string
	}{
		{"value", []string{"value"}},
		{"value |> esc", []string{"value", "esc"}},
		{"value |> split '.'", []string{"value", "split '.'"}},
		{"value |> ", []string{"value", ""}},
		{" |> esc", []string{"", "esc"}},
		{"a |> b |> c", []string{"a", "b", "c"}},
		{"a |> fmt { sep: '|>' }", []string{"a", "fmt { sep: '|>' }"}},
		{`"x |> y"`, []string{`"x |> y"`}},
		{"f(a |> b) |> g", []string{"f(a |> b)", "g"}},
		{`'it\'s |> fine' |> esc`, []string{`'it\'s |> fine'`, "esc"}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitPipes(tt.body)); diff != "" {
				t.Errorf("SplitPipes(%q) mismatch (-want +got):\n%s", tt.body, diff)
			}
		})
	}
}

func TestSplitStage(t *testing.T) {
	tests := []struct {
		stage, name, args string
	}{
		{"esc", "esc", ""},
		{"split '.'", "split", "'.'"},
		{"fmt  { a: 1 } ", "fmt", "{ a: 1 }"},
	}
	for _, tt := range tests {
		name, args := SplitStage(tt.stage)
		if name != tt.name || args != tt.args {
			t.Errorf("SplitStage(%q) = (%q, %q), want (%q, %q)", tt.stage, name, args, tt.name, tt.args)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := map[string]bool{
		"esc":        true,
		"_private":   true,
		"$el":        true,
		"camelCase2": true,
		"0esc":       false,
		"":           false,
		"a-b":        false,
		"a.b":        false,
		"ünicode":    false,
	}
	for name, want := range tests {
		if got := IsIdentifier(name); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", name, got, want)
		}
	}
}
