package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/qi-lang/qi/core"
	"github.com/qi-lang/qi/log"
	"github.com/qi-lang/qi/reader"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop. It writes the current accumulated source to a temp file, opens the
// user's editor, and re-parses and re-evaluates the result directly in the
// live session's root environment. On parse or eval error the user is
// prompted to re-edit; declining exits the program.
type editSourceCommand struct {
	source    string
	ctxFunc   func() context.Context
	ev        *core.Evaluator
	newSource string
	logger    log.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. It opens the editor on the
// accumulated source, parses and evaluates the result in the live session
// (forms evaluated before a failing one keep their effects), and prompts
// on error. If the user
// declines to re-edit, it returns [ErrEditDeclined].
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()

	content := c.source

	f, err := os.CreateTemp(os.TempDir(), "qi-repl-*.qi")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		r, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		br := bufio.NewReader(r)
		if _, err := br.Peek(1); err != nil {
			// EOF or read error; treat as cancelled edit.
			return nil
		}

		data, err := io.ReadAll(br)
		if err != nil {
			return err
		}

		newSource := string(data)

		forms, parseErr := reader.Parse(newSource)

		var evalErr error

		if parseErr == nil {
			evalErr = c.tryEval(forms)
		}

		c.logger.TraceContext(
			ctx,
			"editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil && evalErr == nil),
		)

		if parseErr == nil && evalErr == nil {
			c.newSource = newSource

			return nil
		}

		failure := parseErr
		if failure == nil {
			failure = evalErr
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", failure)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		data, readErr := os.ReadFile(tmpPath)
		if readErr != nil {
			return readErr
		}

		content = string(data)
	}
}

// tryEval evaluates forms into the live root environment. `def` always
// targets the process-wide root (spec: every environment's Root() is the
// same frame) regardless of which frame it's invoked from, so there is no
// isolated scratch frame to dry-run against; a bad edit's side effects
// before the failing form are therefore visible even on error.
func (c *editSourceCommand) tryEval(forms []core.Value) error {
	for _, form := range forms {
		if _, err := c.ev.Eval(form, c.ev.Root); err != nil {
			return err
		}
	}

	return nil
}

// runEditor launches the user's editor on the given file path and returns a
// reader over the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (io.Reader, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return f, nil
}
