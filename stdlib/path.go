package stdlib

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/qi-lang/qi/core"
)

func registerPath(r *core.Registry) {
	r.Add(core.NewBuiltin("path-abs", 1, 1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		p, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		return core.String(pathAbs(p)), nil
	}))

	r.Add(core.NewBuiltin("path-cat", 0, -1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		elems, err := asStringSeqArgs(args)
		if err != nil {
			return nil, err
		}

		return core.String(filepath.Join(elems...)), nil
	}))

	r.Add(core.NewBuiltin("path-rel", 2, 2, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		from, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		to, err := asString(args[1])
		if err != nil {
			return nil, err
		}

		rel, err := filepath.Rel(pathAbs(from), pathAbs(to))
		if err != nil {
			return core.String(filepath.Join(from, to)), nil
		}

		return core.String(rel), nil
	}))

	r.Add(core.NewBuiltin("path-exists?", 1, 1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		p, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		_, statErr := os.Stat(p)

		return core.Bool(statErr == nil), nil
	}))

	// path-prepend mimics PATH-like prepend-with-dedup semantics the
	// shell environment expects of $PATH/$PYTHONPATH/etc. (spec out-of-
	// core stdlib boundary): subject is the existing delimited string,
	// the remaining args are prepended in order with the mung library's
	// own duplicate-elision.
	r.Add(core.NewBuiltin("path-prepend", 1, -1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		subject, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		prefix, err := asStringSeqArgs(args[1:])
		if err != nil {
			return nil, err
		}

		return core.String(mungPrepend(subject, prefix...)), nil
	}))
}

func pathAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}

	return abs
}

func asStringSeqArgs(args []core.Value) ([]string, error) {
	out := make([]string, len(args))

	for i, a := range args {
		s, err := asString(a)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}

func mungPrepend(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}
