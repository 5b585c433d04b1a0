package core

import (
	"errors"
	"log/slog"
	"strings"
)

// Kind names one of the surface-visible error categories from spec §7.
type Kind string

const (
	KindUnbound         Kind = "unbound"
	KindType            Kind = "type"
	KindArity           Kind = "arity"
	KindMapKey          Kind = "map-key"
	KindDivisionByZero  Kind = "division-by-zero"
	KindNoMatch         Kind = "no-match"
	KindRecurMisplaced  Kind = "recur-misplaced"
	KindSendOnClosed    Kind = "send-on-closed"
	KindCancelled       Kind = "cancelled"
	KindIO              Kind = "io"
	KindUser            Kind = "user"
	KindInvalidValue    Kind = "invalid-value"
	KindInvalidBoolean  Kind = "invalid-boolean"
	KindSyntax          Kind = "syntax"
)

// Error is Qi's internal error representation. It implements error,
// errors.Unwrap, and slog.LogValuer, following the teacher's
// lang.Error design: a sentinel message, an optionally wrapped cause,
// and structured attributes for logging. ToValue converts it to the
// canonical `{:error payload}` map shape required by spec §3/§7.
type Error struct {
	kind  Kind
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a sentinel Error of the given kind and message.
func NewError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Kind returns the error's category.
func (e *Error) Kind() Kind { return e.kind }

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)
	attrs = append(attrs, slog.String("kind", string(e.kind)))

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{kind: e.kind, msg: e.msg, err: cause, attrs: e.attrs}
}

// With returns a copy of e carrying additional structured attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(merged, e.attrs)
	copy(merged[len(e.attrs):], attrs)

	return &Error{kind: e.kind, msg: e.msg, err: e.err, attrs: merged}
}

// ToValue converts e to the canonical `{:error payload}` map shape. The
// payload is a map of :code (the Kind) and :message (the localized
// message, per the process-wide i18n language, spec §6/§9).
func (e *Error) ToValue() *Map {
	payload, _ := NewMap(
		internKeyword("code"), String(e.kind),
		internKeyword("message"), String(Localize(e)),
	)

	errMap, _ := NewMap(internKeyword("error"), payload)

	return errMap
}

// FromValue recognises the `{:error payload}` shape (spec §3) and
// extracts a Kind and message from it; it also accepts a bare string
// payload (as produced by a raw `(error "msg")` call).
func FromValue(v Value) (*Error, bool) {
	m, ok := v.(*Map)
	if !ok || !m.IsError() {
		return nil, false
	}

	payload := m.ErrorPayload()

	switch p := payload.(type) {
	case String:
		return NewError(KindUser, string(p)), true
	case *Map:
		kind := KindUser

		if code, ok := p.Get(internKeyword("code")); ok {
			if s, ok := code.(String); ok {
				kind = Kind(s)
			}
		}

		msg := ""

		if m2, ok := p.Get(internKeyword("message")); ok {
			if s, ok := m2.(String); ok {
				msg = string(s)
			}
		}

		return NewError(kind, msg), true
	default:
		return NewError(KindUser, printValue(payload)), true
	}
}

// Sentinel errors, one per Kind, matching the teacher's error.go
// pattern of package-level predeclared *Error values built with NewError.
var (
	ErrUnbound        = NewError(KindUnbound, "unbound symbol")
	ErrType           = NewError(KindType, "type error")
	ErrArity          = NewError(KindArity, "wrong number of arguments")
	ErrMapKey         = NewError(KindMapKey, "unsupported map key type")
	ErrDivisionByZero = NewError(KindDivisionByZero, "division by zero")
	ErrNoMatch        = NewError(KindNoMatch, "no matching clause")
	ErrRecurMisplaced = NewError(KindRecurMisplaced, "recur outside tail position")
	ErrSendOnClosed   = NewError(KindSendOnClosed, "send on closed channel")
	ErrCancelled      = NewError(KindCancelled, "scope cancelled")
	ErrIO             = NewError(KindIO, "io error")
	ErrInvalidValueType = NewError(KindInvalidValue, "invalid value type")
	ErrInvalidBoolean   = NewError(KindInvalidBoolean, "invalid boolean value")
	ErrSyntax           = NewError(KindSyntax, "syntax error")
)

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error

	ok := errors.As(err, &e)

	return e, ok
}

func attrStr(key, val string) slog.Attr { return slog.String(key, val) }

func attrInt(key string, val int) slog.Attr { return slog.Int(key, val) }

func attrType(key string, v Value) slog.Attr {
	return slog.String(key, valueTypeName(v))
}

func valueTypeName(v Value) string {
	switch v.(type) {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Keyword:
		return "keyword"
	case Symbol:
		return "symbol"
	case *Vector:
		return "vector"
	case *List:
		return "list"
	case *Map:
		return "map"
	case *Function:
		return "function"
	case *Builtin:
		return "builtin"
	case *Atom:
		return "atom"
	case *Channel:
		return "channel"
	case *Stream:
		return "stream"
	case *Task:
		return "task"
	case *Scope:
		return "scope"
	default:
		return "unknown"
	}
}
