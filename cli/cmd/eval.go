package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/qi-lang/qi/config"
	"github.com/qi-lang/qi/core"
	"github.com/qi-lang/qi/log"
	"github.com/qi-lang/qi/reader"
	"github.com/qi-lang/qi/stdlib"
)

// Eval evaluates a named definition from a source file with the given
// arguments bound positionally to its parameter list.
type Eval struct {
	Name   string   `arg:"" help:"Symbol to evaluate"                        name:"name"`
	Args   []string `arg:"" help:"Arguments to bind to definition parameters" name:"args" optional:""`
	Source string   `       help:"Source input file or '-' for stdin"                                 default:"-" short:"f"`
	Config string   `       help:"Path to qi.yaml configuration file"                                 default:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	var file *os.File
	if e.Source == "-" {
		file = os.Stdin
	} else {
		file, err = os.Open(e.Source)
		if err != nil {
			return err
		}
		defer file.Close()
	}

	src, err := io.ReadAll(bufio.NewReader(file))
	if err != nil {
		return err
	}

	forms, err := reader.Parse(string(src))
	if err != nil {
		return wrapCommandErr("eval", err)
	}

	ev := core.NewEvaluator(log.With(slog.String("command", "eval")))

	cfg, err := config.Resolve(e.Config, config.Config{})
	if err != nil {
		return wrapCommandErr("eval", err)
	}

	cfg.Apply(ev.Runtime)
	stdlib.Register(ev.Builtins, ev.Root)

	for _, form := range forms {
		if _, err := ev.Eval(form, ev.Root); err != nil {
			return wrapCommandErr("eval", err)
		}
	}

	sym, err := ev.Root.Lookup(e.Name)
	if err != nil {
		return wrapCommandErr("eval", err).With(slog.String("name", e.Name))
	}

	args := make([]core.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = core.String(a)
	}

	result, err := ev.Apply(ctx, sym, args, false)
	if err != nil {
		return wrapCommandErr("eval", err).With(slog.String("name", e.Name))
	}

	fmt.Println(result.String())

	return nil
}
