package core

import (
	"bufio"
	"context"
	"os"
	"sync"

	"github.com/klauspost/readahead"
)

// Stream is a lazy sequence node (spec §4.8): either empty, or a head
// Value plus a thunk producing the next node. The thunk is memoised so
// repeated Next calls on the same node do not re-run side effects,
// which is what makes I/O-backed streams safely single-pass even
// though downstream combinators may hold onto an earlier node.
type Stream struct {
	empty   bool
	head    Value
	once    sync.Once
	nextFn  func() (*Stream, error)
	next    *Stream
	nextErr error
}

func (s *Stream) String() string { return "#<stream>" }

// EmptyStream returns the canonical empty stream node.
func EmptyStream() *Stream { return &Stream{empty: true} }

// Cons builds a stream node from an already-known head and a thunk
// for the rest.
func Cons(head Value, nextFn func() (*Stream, error)) *Stream {
	return &Stream{head: head, nextFn: nextFn}
}

// IsEmpty reports whether s is the empty stream.
func (s *Stream) IsEmpty() bool { return s.empty }

// Head returns s's head value; callers must check IsEmpty first.
func (s *Stream) Head() Value { return s.head }

// Next forces and returns the node following s.
func (s *Stream) Next() (*Stream, error) {
	s.once.Do(func() { s.next, s.nextErr = s.nextFn() })

	return s.next, s.nextErr
}

// StreamOfSlice builds a finite stream over items (spec: `stream-of
// coll`).
func StreamOfSlice(items []Value) *Stream {
	return streamOfSliceAt(items, 0)
}

func streamOfSliceAt(items []Value, i int) *Stream {
	if i >= len(items) {
		return EmptyStream()
	}

	return Cons(items[i], func() (*Stream, error) { return streamOfSliceAt(items, i+1), nil })
}

// RangeStream builds the finite stream lo, lo+1, ..., hi-1 (spec:
// `range lo hi`).
func RangeStream(lo, hi Int) *Stream {
	if lo >= hi {
		return EmptyStream()
	}

	return Cons(lo, func() (*Stream, error) { return RangeStream(lo+1, hi), nil })
}

// IterateStream builds the infinite stream x, f(x), f(f(x)), ... (spec:
// `iterate f x`).
func IterateStream(ctx context.Context, ev *Evaluator, f Value, x Value) *Stream {
	return Cons(x, func() (*Stream, error) {
		nx, err := ev.Apply(ctx, f, []Value{x}, false)
		if err != nil {
			return nil, err
		}

		return IterateStream(ctx, ev, f, nx), nil
	})
}

// RepeatStream builds the infinite stream v, v, v, ... (spec: `repeat
// v`).
func RepeatStream(v Value) *Stream {
	return Cons(v, func() (*Stream, error) { return RepeatStream(v), nil })
}

// CycleStream builds the infinite repetition of items (spec: `cycle
// coll`; "empty coll is an error").
func CycleStream(items []Value) (*Stream, error) {
	if len(items) == 0 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "cycle requires a non-empty collection"))
	}

	var cycleAt func(i int) *Stream
	cycleAt = func(i int) *Stream {
		return Cons(items[i%len(items)], func() (*Stream, error) { return cycleAt(i + 1), nil })
	}

	return cycleAt(0), nil
}

// MapStream lazily applies f to every element of s.
func MapStream(ctx context.Context, ev *Evaluator, f Value, s *Stream) (*Stream, error) {
	if s.IsEmpty() {
		return EmptyStream(), nil
	}

	h, err := ev.Apply(ctx, f, []Value{s.Head()}, false)
	if err != nil {
		return nil, err
	}

	return Cons(h, func() (*Stream, error) {
		n, err := s.Next()
		if err != nil {
			return nil, err
		}

		return MapStream(ctx, ev, f, n)
	}), nil
}

// FilterStream lazily keeps elements of s for which pred is truthy.
func FilterStream(ctx context.Context, ev *Evaluator, pred Value, s *Stream) (*Stream, error) {
	cur := s

	for {
		if cur.IsEmpty() {
			return EmptyStream(), nil
		}

		ok, err := ev.Apply(ctx, pred, []Value{cur.Head()}, false)
		if err != nil {
			return nil, err
		}

		if Truthy(ok) {
			found := cur

			return Cons(found.Head(), func() (*Stream, error) {
				n, err := found.Next()
				if err != nil {
					return nil, err
				}

				return FilterStream(ctx, ev, pred, n)
			}), nil
		}

		n, err := cur.Next()
		if err != nil {
			return nil, err
		}

		cur = n
	}
}

// eagerMap applies f to every element of an already-realized Vector or
// List (spec §4.8: "map f s" with s a collection, not only a Stream),
// returning a value of the same collection kind as coll.
func eagerMap(ctx context.Context, ev *Evaluator, f Value, coll Value) (Value, error) {
	items, err := seqItems(coll)
	if err != nil {
		return nil, ErrType.With(attrStr("reason", "map requires a Stream, Vector, or List"))
	}

	out := make([]Value, len(items))

	for i, item := range items {
		v, err := ev.Apply(ctx, f, []Value{item}, false)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return sameKind(coll, out), nil
}

// eagerFilter keeps elements of an already-realized Vector or List for
// which pred is truthy, preserving order and collection kind.
func eagerFilter(ctx context.Context, ev *Evaluator, pred Value, coll Value) (Value, error) {
	items, err := seqItems(coll)
	if err != nil {
		return nil, ErrType.With(attrStr("reason", "filter requires a Stream, Vector, or List"))
	}

	out := make([]Value, 0, len(items))

	for _, item := range items {
		ok, err := ev.Apply(ctx, pred, []Value{item}, false)
		if err != nil {
			return nil, err
		}

		if Truthy(ok) {
			out = append(out, item)
		}
	}

	return sameKind(coll, out), nil
}

// sameKind rebuilds items as the same concrete collection type as
// coll (Vector or List), matching the type switch convention
// registerCollections' conj builtin already uses.
func sameKind(coll Value, items []Value) Value {
	if _, ok := coll.(*List); ok {
		return &List{Items: items}
	}

	return &Vector{Items: items}
}

// TakeStream builds the finite prefix of s of length at most n.
func TakeStream(n Int, s *Stream) (*Stream, error) {
	if n <= 0 || s.IsEmpty() {
		return EmptyStream(), nil
	}

	return Cons(s.Head(), func() (*Stream, error) {
		nx, err := s.Next()
		if err != nil {
			return nil, err
		}

		return TakeStream(n-1, nx)
	}), nil
}

// DropStream forces and discards the first n nodes of s.
func DropStream(n Int, s *Stream) (*Stream, error) {
	cur := s

	for i := Int(0); i < n; i++ {
		if cur.IsEmpty() {
			return cur, nil
		}

		nx, err := cur.Next()
		if err != nil {
			return nil, err
		}

		cur = nx
	}

	return cur, nil
}

// TakeWhileStream keeps elements until pred first fails.
func TakeWhileStream(ctx context.Context, ev *Evaluator, pred Value, s *Stream) (*Stream, error) {
	if s.IsEmpty() {
		return EmptyStream(), nil
	}

	ok, err := ev.Apply(ctx, pred, []Value{s.Head()}, false)
	if err != nil {
		return nil, err
	}

	if !Truthy(ok) {
		return EmptyStream(), nil
	}

	return Cons(s.Head(), func() (*Stream, error) {
		nx, err := s.Next()
		if err != nil {
			return nil, err
		}

		return TakeWhileStream(ctx, ev, pred, nx)
	}), nil
}

// DropWhileStream discards elements until pred first fails, then
// returns the stream starting there.
func DropWhileStream(ctx context.Context, ev *Evaluator, pred Value, s *Stream) (*Stream, error) {
	cur := s

	for {
		if cur.IsEmpty() {
			return cur, nil
		}

		ok, err := ev.Apply(ctx, pred, []Value{cur.Head()}, false)
		if err != nil {
			return nil, err
		}

		if !Truthy(ok) {
			return cur, nil
		}

		nx, err := cur.Next()
		if err != nil {
			return nil, err
		}

		cur = nx
	}
}

// RealizeStream forces s to a List, diverging on an infinite stream
// (spec: "realize s ... diverges on infinite streams" — callers are
// expected to bound it with take first).
func RealizeStream(s *Stream) (*List, error) {
	var items []Value

	cur := s

	for !cur.IsEmpty() {
		items = append(items, cur.Head())

		nx, err := cur.Next()
		if err != nil {
			return nil, err
		}

		cur = nx
	}

	return &List{Items: items}, nil
}

// FileLinesStream opens path and builds a single-pass stream of its
// lines as String values, reading ahead on a background goroutine via
// readahead so the consumer overlaps decode work with disk I/O.
func FileLinesStream(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrIO.Wrap(err).With(attrStr("path", path))
	}

	ra := readahead.NewReader(f)
	scanner := bufio.NewScanner(ra)

	var next func() *Stream
	next = func() *Stream {
		if !scanner.Scan() {
			_ = ra.Close()

			return EmptyStream()
		}

		line := scanner.Text()

		return Cons(String(line), func() (*Stream, error) { return next(), scanner.Err() })
	}

	return next(), nil
}

// FileChunksStream opens path and builds a single-pass stream of
// String chunks of at most size bytes, read ahead the same way as
// FileLinesStream.
func FileChunksStream(path string, size int) (*Stream, error) {
	if size <= 0 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "file-chunks size must be positive"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrIO.Wrap(err).With(attrStr("path", path))
	}

	ra := readahead.NewReader(f)

	var next func() *Stream
	next = func() *Stream {
		buf := make([]byte, size)

		n, err := ra.Read(buf)
		if n == 0 {
			_ = ra.Close()

			return EmptyStream()
		}

		chunk := string(buf[:n])

		return Cons(String(chunk), func() (*Stream, error) {
			if err != nil {
				return EmptyStream(), nil
			}

			return next(), nil
		})
	}

	return next(), nil
}
