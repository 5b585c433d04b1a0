package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEvalSource(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.qi")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestEvalRunSimpleDefinition(t *testing.T) {
	src := writeEvalSource(t, "(def answer (fn [] 42))")

	e := &Eval{Name: "answer", Source: src}
	require.NoError(t, e.Run(context.Background()))
}

func TestEvalRunWithArgs(t *testing.T) {
	src := writeEvalSource(t, `(def greet (fn [name] (str-join ["Hello, " name] "")))`)

	e := &Eval{Name: "greet", Args: []string{"world"}, Source: src}
	require.NoError(t, e.Run(context.Background()))
}

func TestEvalRunUnboundName(t *testing.T) {
	src := writeEvalSource(t, "(def x 1)")

	e := &Eval{Name: "missing", Source: src}
	require.Error(t, e.Run(context.Background()))
}

func TestEvalRunInvalidSyntax(t *testing.T) {
	src := writeEvalSource(t, "(def x")

	e := &Eval{Name: "x", Source: src}
	require.Error(t, e.Run(context.Background()))
}
