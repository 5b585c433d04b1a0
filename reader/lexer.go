// Package reader turns Qi source text into core.Value form trees. It is
// the one package core is not allowed to import (core.ParseProgram is
// registered from here at init, avoiding the cycle); everything surface
// syntax — literals, quoting sigils, and the pipeline operators of
// spec §4.9 — is resolved to plain forms before the evaluator ever sees
// them.
package reader

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/qi-lang/qi/core"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokQuote
	tokQuasiquote
	tokUnquote
	tokUnquoteSplice
	tokAmp // &, used in param lists
	tokSymbol
	tokKeyword
	tokString
	tokInt
	tokFloat
	tokPipe    // |>
	tokPPipe   // ||>
	tokErrPipe // |>?
	tokGoPipe  // ~>
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer scans Qi source into tokens one at a time, tracking line number
// for syntax-error reporting.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (lx *lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}

	return lx.src[lx.pos]
}

func (lx *lexer) peekByteAt(off int) byte {
	if lx.pos+off >= len(lx.src) {
		return 0
	}

	return lx.src[lx.pos+off]
}

func (lx *lexer) advance() byte {
	b := lx.src[lx.pos]
	lx.pos++

	if b == '\n' {
		lx.line++
	}

	return b
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ','
}

// isDelim reports whether b terminates a bare symbol/number token.
func isDelim(b byte) bool {
	switch b {
	case 0, ' ', '\t', '\r', '\n', ',', '(', ')', '[', ']', '{', '}', '"', ';':
		return true
	default:
		return false
	}
}

func (lx *lexer) skipAtmosphere() {
	for lx.pos < len(lx.src) {
		b := lx.peekByte()

		switch {
		case isSpace(b):
			lx.advance()
		case b == ';':
			for lx.pos < len(lx.src) && lx.peekByte() != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

// next returns the next token, or a syntax error with the offending
// line number attached.
func (lx *lexer) next() (token, error) {
	lx.skipAtmosphere()

	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}, nil
	}

	line := lx.line
	b := lx.peekByte()

	switch b {
	case '(':
		lx.advance()
		return token{kind: tokLParen, line: line}, nil
	case ')':
		lx.advance()
		return token{kind: tokRParen, line: line}, nil
	case '[':
		lx.advance()
		return token{kind: tokLBracket, line: line}, nil
	case ']':
		lx.advance()
		return token{kind: tokRBracket, line: line}, nil
	case '{':
		lx.advance()
		return token{kind: tokLBrace, line: line}, nil
	case '}':
		lx.advance()
		return token{kind: tokRBrace, line: line}, nil
	case '\'':
		lx.advance()
		return token{kind: tokQuote, line: line}, nil
	case '`':
		lx.advance()
		return token{kind: tokQuasiquote, line: line}, nil
	case '~':
		lx.advance()
		if lx.peekByte() == '@' {
			lx.advance()
			return token{kind: tokUnquoteSplice, line: line}, nil
		}

		if lx.peekByte() == '>' {
			lx.advance()
			return token{kind: tokGoPipe, line: line}, nil
		}

		return token{kind: tokUnquote, line: line}, nil
	case '"':
		return lx.readString(line)
	case ':':
		return lx.readKeyword(line)
	case '|':
		if lx.peekByteAt(1) == '|' && lx.peekByteAt(2) == '>' {
			lx.advance()
			lx.advance()
			lx.advance()

			return token{kind: tokPPipe, line: line}, nil
		}

		if lx.peekByteAt(1) == '>' {
			lx.advance()
			lx.advance()

			if lx.peekByte() == '?' {
				lx.advance()
				return token{kind: tokErrPipe, line: line}, nil
			}

			return token{kind: tokPipe, line: line}, nil
		}

		return lx.readSymbol(line)
	case '&':
		if isDelim(lx.peekByteAt(1)) {
			lx.advance()
			return token{kind: tokAmp, line: line}, nil
		}

		return lx.readSymbol(line)
	default:
		if (b >= '0' && b <= '9') || ((b == '-' || b == '+') && isDigit(lx.peekByteAt(1))) {
			return lx.readNumber(line)
		}

		return lx.readSymbol(line)
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (lx *lexer) readString(line int) (token, error) {
	lx.advance() // opening quote

	var sb strings.Builder

	for {
		if lx.pos >= len(lx.src) {
			return token{}, core.ErrSyntax.With(slog.Int("line", line), slog.String("reason", "unterminated string literal"))
		}

		b := lx.advance()

		if b == '"' {
			break
		}

		if b == '\\' {
			if lx.pos >= len(lx.src) {
				return token{}, core.ErrSyntax.With(slog.Int("line", line), slog.String("reason", "unterminated escape in string literal"))
			}

			esc := lx.advance()

			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(esc)
			}

			continue
		}

		sb.WriteByte(b)
	}

	return token{kind: tokString, text: sb.String(), line: line}, nil
}

func (lx *lexer) readKeyword(line int) (token, error) {
	lx.advance() // leading ':'

	start := lx.pos
	for lx.pos < len(lx.src) && !isDelim(lx.peekByte()) {
		lx.advance()
	}

	name := lx.src[start:lx.pos]
	if name == "" {
		return token{}, core.ErrSyntax.With(slog.Int("line", line), slog.String("reason", "empty keyword"))
	}

	return token{kind: tokKeyword, text: name, line: line}, nil
}

func (lx *lexer) readSymbol(line int) (token, error) {
	start := lx.pos

	for lx.pos < len(lx.src) && !isDelim(lx.peekByte()) {
		lx.advance()
	}

	text := lx.src[start:lx.pos]
	if text == "" {
		r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
		return token{}, core.ErrSyntax.With(slog.Int("line", line), slog.String("reason", "unexpected character "+string(r)))
	}

	return token{kind: tokSymbol, text: text, line: line}, nil
}

func (lx *lexer) readNumber(line int) (token, error) {
	start := lx.pos

	if lx.peekByte() == '-' || lx.peekByte() == '+' {
		lx.advance()
	}

	isFloat := false

	for lx.pos < len(lx.src) && !isDelim(lx.peekByte()) {
		if lx.peekByte() == '.' || lx.peekByte() == 'e' || lx.peekByte() == 'E' {
			isFloat = true
		}

		lx.advance()
	}

	text := lx.src[start:lx.pos]

	if isFloat {
		return token{kind: tokFloat, text: text, line: line}, nil
	}

	return token{kind: tokInt, text: text, line: line}, nil
}
