package reader

import (
	"log/slog"
	"strconv"

	"github.com/qi-lang/qi/core"
)

// parser is a recursive-descent reader over a token stream, producing
// core.Value form trees. It buffers at most one lookahead token.
type parser struct {
	lx   *lexer
	peek *token
}

func newParser(src string) *parser {
	return &parser{lx: newLexer(src)}
}

func (p *parser) nextToken() (token, error) {
	if p.peek != nil {
		t := *p.peek
		p.peek = nil

		return t, nil
	}

	return p.lx.next()
}

func (p *parser) peekToken() (token, error) {
	if p.peek == nil {
		t, err := p.lx.next()
		if err != nil {
			return token{}, err
		}

		p.peek = &t
	}

	return *p.peek, nil
}

// Parse reads every top-level form from source.
func Parse(source string) ([]core.Value, error) {
	p := newParser(source)

	var forms []core.Value

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokEOF {
			return forms, nil
		}

		form, err := p.readForm()
		if err != nil {
			return nil, err
		}

		forms = append(forms, form)
	}
}

// ParseOne reads a single form from source, ignoring any trailing text.
// It is the entry point the REPL uses to evaluate one line at a time.
func ParseOne(source string) (core.Value, error) {
	p := newParser(source)
	return p.readForm()
}

func (p *parser) readForm() (core.Value, error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokEOF:
		return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "unexpected end of input"))

	case tokLParen:
		return p.readSeqForm(tokRParen, ")")

	case tokLBracket:
		return p.readVector()

	case tokLBrace:
		return p.readMap()

	case tokRParen, tokRBracket, tokRBrace:
		return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "unexpected closing delimiter"))

	case tokQuote:
		inner, err := p.readForm()
		if err != nil {
			return nil, err
		}

		return core.NewList(core.NewSymbol("quote"), inner), nil

	case tokQuasiquote:
		inner, err := p.readForm()
		if err != nil {
			return nil, err
		}

		return core.NewList(core.NewSymbol("quasi"), inner), nil

	case tokUnquote:
		inner, err := p.readForm()
		if err != nil {
			return nil, err
		}

		return core.NewList(core.NewSymbol("unquote"), inner), nil

	case tokUnquoteSplice:
		inner, err := p.readForm()
		if err != nil {
			return nil, err
		}

		return core.NewList(core.NewSymbol("splice"), inner), nil

	case tokAmp:
		return core.NewSymbol("&"), nil

	case tokKeyword:
		return core.NewKeyword(tok.text), nil

	case tokString:
		return core.String(tok.text), nil

	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "malformed integer literal "+tok.text))
		}

		return core.Int(n), nil

	case tokFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "malformed float literal "+tok.text))
		}

		return core.Float(f), nil

	case tokSymbol:
		switch tok.text {
		case "nil":
			return core.Nil{}, nil
		case "true":
			return core.Bool(true), nil
		case "false":
			return core.Bool(false), nil
		default:
			return core.NewSymbol(tok.text), nil
		}

	case tokPipe, tokPPipe, tokErrPipe, tokGoPipe:
		return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "pipeline operator outside an expression position"))

	default:
		return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "unrecognised token"))
	}
}

// readSeqForm reads forms up to the matching close delimiter, then
// lowers any pipeline operators found at this nesting level (spec
// §4.9). Pipeline operators are only meaningful directly inside a
// parenthesised form: `(x |> f)`.
func (p *parser) readSeqForm(close tokenKind, closeText string) (core.Value, error) {
	items, err := p.readUntil(close, closeText)
	if err != nil {
		return nil, err
	}

	return lowerPipeline(items)
}

func (p *parser) readUntil(close tokenKind, closeText string) ([]core.Value, error) {
	var items []core.Value

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokEOF {
			return nil, core.ErrSyntax.With(slog.Int("line", tok.line), slog.String("reason", "unterminated form, expected "+closeText))
		}

		if tok.kind == close {
			p.nextToken() //nolint:errcheck
			return items, nil
		}

		item, err := p.readPipelineAware(tok)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}
}

// readPipelineAware reads one item of a surrounding sequence, consuming
// an infix pipeline operator token directly (the general readForm
// dispatch rejects them, since they are only legal here).
func (p *parser) readPipelineAware(_ token) (core.Value, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokPipe, tokPPipe, tokErrPipe, tokGoPipe:
		p.nextToken() //nolint:errcheck
		return pipelineMarker(tok.kind), nil
	default:
		return p.readForm()
	}
}

func (p *parser) readVector() (core.Value, error) {
	items, err := p.readUntil(tokRBracket, "]")
	if err != nil {
		return nil, err
	}

	return &core.Vector{Items: items}, nil
}

// readMap reads a `{k v ...}` literal directly into a *core.Map of
// unevaluated forms; core.Evaluator.eval's *Map case evaluates each key
// and value in turn (spec §4.1: "keys of literal maps are evaluated"),
// so every key form read here must itself be a valid MapKey shape
// (Keyword, Symbol, String, or Int) even though its evaluated form is
// what the running program actually sees as the key.
func (p *parser) readMap() (core.Value, error) {
	items, err := p.readUntil(tokRBrace, "}")
	if err != nil {
		return nil, err
	}

	if len(items)%2 != 0 {
		return nil, core.ErrSyntax.With(slog.String("reason", "map literal has an odd number of forms"))
	}

	m, err := core.NewMap(items...)
	if err != nil {
		return nil, err
	}

	return m, nil
}
