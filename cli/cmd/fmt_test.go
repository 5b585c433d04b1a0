package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempSource(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.qi")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)

	return buf.String()
}

func TestNativeFmtValidSyntax(t *testing.T) {
	for _, input := range []string{
		"(def x 1)",
		"(def x {:a 1 :b 2})",
		"(def a 1) (def b 2)",
	} {
		native := &Native{Indent: 2, Source: writeTempSource(t, input)}
		require.NoError(t, native.Run(context.Background()))
	}
}

func TestNativeFmtInvalidSyntax(t *testing.T) {
	for _, input := range []string{
		"(def x",
		"{:a 1",
		"[1 2",
	} {
		native := &Native{Indent: 2, Source: writeTempSource(t, input)}
		require.Error(t, native.Run(context.Background()))
	}
}

func TestNativeFmtStdin(t *testing.T) {
	oldStdin := os.Stdin
	defer func() { os.Stdin = oldStdin }()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdin = r

	go func() {
		defer w.Close()
		io.WriteString(w, "(def x 1)")
	}()

	native := &Native{Indent: 2, Source: "-"}
	require.NoError(t, native.Run(context.Background()))
}

func TestJSONFmtInvalidSyntax(t *testing.T) {
	bad := &JSON{Indent: 2, Source: writeTempSource(t, "(def x")}
	require.Error(t, bad.Run(context.Background()))

	good := &JSON{Indent: 2, Source: writeTempSource(t, "(def x 1)")}
	require.NoError(t, good.Run(context.Background()))
}

func TestYAMLFmtInvalidSyntax(t *testing.T) {
	bad := &YAML{Indent: 2, Source: writeTempSource(t, "(def x")}
	require.Error(t, bad.Run(context.Background()))

	good := &YAML{Indent: 2, Source: writeTempSource(t, "(def x 1)")}
	require.NoError(t, good.Run(context.Background()))
}

func TestASTFmtInvalidSyntax(t *testing.T) {
	bad := &AST{Source: writeTempSource(t, "(def x")}
	require.Error(t, bad.Run(context.Background()))

	good := &AST{Source: writeTempSource(t, "(def x 1)")}
	require.NoError(t, good.Run(context.Background()))
}

func TestFormatNativeOutput(t *testing.T) {
	native := &Native{Indent: 2, Source: writeTempSource(t, "(def x {:a 1 :b 2})")}

	var runErr error

	output := captureStdout(t, func() {
		runErr = native.Run(context.Background())
	})

	require.NoError(t, runErr)
	require.Contains(t, output, "def")
	require.Contains(t, output, "x")
}
