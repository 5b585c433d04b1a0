package repl

import "testing"

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_space", "a  fo", 5, "fo", 3, 5},
		{"after_paren", "(double fo", 10, "fo", 8, 10},
		{"empty_at_boundary", "a  ", 3, "", 3, 3},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		// Hyphens, plus, minus, star, slash are identifier characters, not
		// word boundaries -- they are valid whole symbol names on their own.
		{"hyphenated", "log-pretty", 10, "log-pretty", 0, 10},
		{"plus_symbol", "+", 1, "+", 0, 1},
		{"after_comma", "(add a, fo", 10, "fo", 8, 10},
		{"empty_after_paren", "(", 1, "", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestIsWordBoundary(t *testing.T) {
	boundary := []rune{' ', '\t', '\r', '\n', ',', '(', ')', '[', ']', '{', '}', '"', ';'}
	for _, r := range boundary {
		if !isWordBoundary(r) {
			t.Errorf("isWordBoundary(%q) = false, want true", r)
		}
	}

	notBoundary := []rune{'a', '-', '+', '*', '/', '!', '?', '.'}
	for _, r := range notBoundary {
		if isWordBoundary(r) {
			t.Errorf("isWordBoundary(%q) = true, want false", r)
		}
	}
}

func TestChildCandidates(t *testing.T) {
	env := newTestEnv(t)
	env.Define("user-value", nil)

	names := childCandidates(env)

	found := false

	for _, n := range names {
		if n == "user-value" {
			found = true
		}
	}

	if !found {
		t.Errorf("childCandidates did not include user-defined binding")
	}
}
