package repl

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/qi-lang/qi/core"
)

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // the symbol in call position
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a form's argument list. It returns the callee symbol, current argument
// index, and whether we're inside a call.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward from cursor to find the opening paren of the call.
	// Track nested parens so we find the correct one.
	parenDepth := 0
	openParenPos := -1

	for i := cursor - 1; i >= 0; i-- {
		ch, size := utf8.DecodeLastRuneInString(input[:i+1])

		switch ch {
		case ')':
			parenDepth++
		case '(':
			if parenDepth == 0 {
				openParenPos = i

				goto foundOpenParen
			}

			parenDepth--
		}

		if i > 0 {
			i -= (size - 1)
		}
	}

foundOpenParen:
	if openParenPos == -1 {
		return functionCall{inCall: false}
	}

	// Extract the callee symbol: the first word after the '('.
	nameStart := openParenPos + 1
	nameEnd := nameStart

	for nameEnd < len(input) {
		r, size := utf8.DecodeRuneInString(input[nameEnd:])
		if isWordBoundary(r) {
			break
		}

		nameEnd += size
	}

	funcName := strings.TrimSpace(input[nameStart:nameEnd])
	if funcName == "" {
		return functionCall{inCall: false}
	}

	// Count completed arguments at depth 0 between the callee and the
	// cursor; commas are ordinary whitespace in this syntax.
	argIndex := 0
	depth := 0
	inArg := false

	for i := nameEnd; i < cursor; {
		r, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case r == '(' || r == '[' || r == '{':
			depth++
			inArg = true
		case r == ')' || r == ']' || r == '}':
			depth--
		case depth == 0 && isWordBoundary(r):
			if inArg {
				argIndex++
				inArg = false
			}
		default:
			if depth == 0 {
				inArg = true
			}
		}

		i += size
	}

	return functionCall{
		name:     funcName,
		argIndex: argIndex,
		inCall:   true,
	}
}

// getSignature retrieves the display signature for a callable bound to
// funcName in env. Returns empty string if the name is unbound or not
// callable.
func getSignature(env *core.Env, funcName string) (signature string, params []string) {
	v, err := env.Lookup(funcName)
	if err != nil {
		return "", nil
	}

	switch fn := v.(type) {
	case *core.Function:
		params = make([]string, len(fn.Params))
		for i := range params {
			params[i] = fmt.Sprintf("arg%d", i)
		}

		if fn.Rest != nil {
			params = append(params, "...rest")
		}

		return formatSignature(funcName, params), params

	case *core.Builtin:
		params = builtinParamNames(fn)

		return formatSignature(funcName, params), params

	default:
		return "", nil
	}
}

// builtinParamNames synthesizes generic parameter names from a builtin's
// declared arity, since Builtin carries only argument counts, not names.
func builtinParamNames(b *core.Builtin) []string {
	n := b.MinArity
	if n < 0 {
		n = 0
	}

	params := make([]string, n)
	for i := range params {
		params[i] = fmt.Sprintf("arg%d", i)
	}

	if b.MaxArity < 0 || b.MaxArity > b.MinArity {
		params = append(params, "...args")
	}

	return params
}

// formatSignature formats a function signature with parameter names.
func formatSignature(name string, params []string) string {
	if len(params) == 0 {
		return name + "()"
	}

	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	// Parse signature: "funcName(param1, param2, ...)"
	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	closeParen := strings.LastIndex(signature, ")")
	if closeParen == -1 {
		return signatureStyle.Render(signature)
	}

	// If no parameters, just render the signature
	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	// Build the signature with highlighted current parameter
	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// Check if this is a variadic parameter
		isVariadic := strings.HasPrefix(param, "...")

		// Highlight the current parameter
		// For variadic parameters, highlight if we're at or beyond that index
		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
