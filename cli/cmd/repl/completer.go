package repl

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/qi-lang/qi/core"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "clear", "quit"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes, matching the reader's own delimiter set (spec: symbols may
// themselves be made up of characters like +, -, *, / that would be
// operators in other languages, so only whitespace and bracketing/quoting
// characters split words here).
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', ',',
		'(', ')', '[', ']', '{', '}', '"', ';':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a space, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	word = input[start:end]

	return word, start, end
}

// childCandidates returns every name bound at the top level of env (builtins
// and user defs alike). There is no namespace/member-access syntax in this
// language, so completion is always flat.
func childCandidates(env *core.Env) []string {
	return env.Root().Names()
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty, it returns nil matches so the
// hint text stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		candidates = childCandidates(m.env)

		if word == "" {
			return nil, nil, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)
	sortMatchesByPriority(matches, m.env)

	return matches, candidates, wordStart, wordEnd
}

// matchPriority returns the sort priority for a completion candidate name:
//
//	0 — user-defined function
//	1 — builtin function
//	2 — plain value binding
func matchPriority(name string, env *core.Env) int {
	v, err := env.Lookup(name)
	if err != nil {
		return 2
	}

	switch v.(type) {
	case *core.Function:
		return 0
	case *core.Builtin:
		return 1
	default:
		return 2
	}
}

// sortMatchesByPriority re-orders matches so that user-defined functions
// appear before builtins, which in turn appear before plain value bindings.
// The original fuzzy-score ordering is preserved within each priority band
// via a stable sort.
func sortMatchesByPriority(matches fuzzy.Matches, env *core.Env) {
	slices.SortStableFunc(matches, func(x, y fuzzy.Match) int {
		return cmp.Compare(matchPriority(x.Str, env), matchPriority(y.Str, env))
	})
}

// candidateEntry holds the pre-rendered text and display width of one
// completion candidate.
type candidateEntry struct {
	rendered string
	w        int
}

// buildCandidateEntries pre-renders every match.
func buildCandidateEntries(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	env *core.Env,
) []candidateEntry {
	entries := make([]candidateEntry, len(matches))

	for i, match := range matches {
		r := renderCandidate(match, tabActive && i == suggIdx, env)
		entries[i] = candidateEntry{r, lipgloss.Width(r)}
	}

	return entries
}

// candidateWindowStart returns the smallest start index ≤ suggIdx such that
// the range [start..suggIdx] fits within the given budget.
func candidateWindowStart(
	entries []candidateEntry,
	suggIdx int,
	sepWidth, leftArrowWidth, rightArrowWidth int,
	totalWidth int,
) int {
	for start := range suggIdx {
		leftCost := 0
		if start > 0 {
			leftCost = leftArrowWidth
		}

		budget := totalWidth - leftCost - rightArrowWidth
		needed := 0

		for i := start; i <= suggIdx; i++ {
			if i > start {
				needed += sepWidth
			}

			needed += entries[i].w
		}

		if needed <= budget {
			return start
		}
	}

	return suggIdx
}

// candidateWindowEnd returns the last index reachable from windowStart within
// budget, pre-computing whether a right-arrow is required.
func candidateWindowEnd(
	entries []candidateEntry,
	windowStart int,
	sepWidth, rightArrowWidth int,
	budget int,
) int {
	used := 0
	windowEnd := windowStart - 1

	for i := windowStart; i < len(entries); i++ {
		extra := entries[i].w
		if i > windowStart {
			extra += sepWidth
		}

		rightReserve := 0
		if i < len(entries)-1 {
			rightReserve = rightArrowWidth
		}

		if used+extra+rightReserve > budget {
			break
		}

		used += extra
		windowEnd = i
	}

	// Guarantee the selected item is always shown even if it alone exceeds
	// the terminal width.
	if windowEnd < windowStart {
		return windowStart
	}

	return windowEnd
}

// renderCandidateBar builds the single-line completion bar that fits within
// the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
//
// When the full candidate list does not fit on one line the bar scrolls
// horizontally so that the selected candidate is always visible. A "← "
// prefix is shown when candidates are hidden to the left, and a " →" suffix
// is shown when candidates are hidden to the right.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	env *core.Env,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)

	leftArrow := hintStyle.Render("← ")
	rightArrow := hintStyle.Render(" →")
	leftArrowWidth := lipgloss.Width(leftArrow)
	rightArrowWidth := lipgloss.Width(rightArrow)

	entries := buildCandidateEntries(matches, suggIdx, tabActive, env)

	// Determine the visible window.
	windowStart := 0

	if tabActive && suggIdx > 0 {
		windowStart = candidateWindowStart(
			entries, suggIdx,
			sepWidth, leftArrowWidth, rightArrowWidth,
			width,
		)
	}

	needLeft := windowStart > 0

	budget := width
	if needLeft {
		budget -= leftArrowWidth
	}

	windowEnd := candidateWindowEnd(
		entries, windowStart,
		sepWidth, rightArrowWidth,
		budget,
	)

	needRight := windowEnd < len(entries)-1

	var b strings.Builder

	if needLeft {
		b.WriteString(leftArrow)
	}

	for i := windowStart; i <= windowEnd; i++ {
		if i > windowStart {
			b.WriteString(sep)
		}

		b.WriteString(entries[i].rendered)
	}

	if needRight {
		b.WriteString(rightArrow)
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool, env *core.Env) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	if isFunction(match.Str, env) {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// formatValuePreview generates a short preview of a value's printed form,
// truncated so it fits on one completion-bar or list line.
func formatValuePreview(v core.Value) string {
	if v == nil {
		return "<nil>"
	}

	s := v.String()
	if len(s) > 40 {
		return s[:37] + "..."
	}

	return s
}

// isFunction checks if a name is bound to a callable (user-defined function
// or builtin) so it can be displayed with a "()" suffix.
func isFunction(name string, env *core.Env) bool {
	v, err := env.Lookup(name)
	if err != nil {
		return false
	}

	switch v.(type) {
	case *core.Function, *core.Builtin:
		return true
	default:
		return false
	}
}
