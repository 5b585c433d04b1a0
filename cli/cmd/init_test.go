package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/config"
)

func contextWithConfigPath(t *testing.T, path string) context.Context {
	t.Helper()

	var cli struct{}

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
	require.NoError(t, err)

	kctx, err := parser.Parse(nil)
	require.NoError(t, err)

	return WithContext(context.Background(), kctx)
}

func TestInitRunCreatesConfig(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "qi.yaml")
	ctx := contextWithConfigPath(t, confPath)

	require.NoError(t, (&Init{}).Run(ctx))

	content, err := os.ReadFile(confPath)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(content, &cfg))
	require.Equal(t, config.Default(), cfg)
}

func TestInitRunRefusesExistingWithoutForce(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "qi.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte("existing content"), 0o644))

	ctx := contextWithConfigPath(t, confPath)
	err := (&Init{Force: false}).Run(ctx)
	require.Error(t, err)
}

func TestInitRunOverwritesWithForce(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "qi.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte("existing content"), 0o644))

	ctx := contextWithConfigPath(t, confPath)
	require.NoError(t, (&Init{Force: true}).Run(ctx))

	content, err := os.ReadFile(confPath)
	require.NoError(t, err)
	require.NotEqual(t, "existing content", string(content))
}

func TestInitRunInvalidPathFails(t *testing.T) {
	t.Parallel()

	ctx := contextWithConfigPath(t, "/nonexistent/directory/qi.yaml")
	err := (&Init{}).Run(ctx)
	require.Error(t, err)
}
