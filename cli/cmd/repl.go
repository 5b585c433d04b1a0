package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qi-lang/qi/cli/cmd/repl"
	"github.com/qi-lang/qi/log"
)

// Repl starts an interactive read-eval-print loop. The terminal itself
// drives stdin once the session starts, so unlike eval and fmt, "-" is not
// accepted as the source value.
type Repl struct {
	Source string `help:"Source file to preload before starting the session" name:"source" default:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	var src io.Reader = strings.NewReader("")

	if r.Source != "" {
		f, err := os.Open(r.Source)
		if err != nil {
			return wrapCommandErr("repl", err)
		}
		defer f.Close()

		src = bufio.NewReader(f)
	}

	ktx := kongContextFrom(ctx)

	cache, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache namespace undefined")
	}

	logger := log.With(slog.String("command", "repl"))

	if err := repl.Run(ctx, src, filepath.Clean(cache), logger); err != nil {
		return wrapCommandErr("repl", err)
	}

	return nil
}
