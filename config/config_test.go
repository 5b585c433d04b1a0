package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qi-lang/qi/core"
)

func TestDefault(t *testing.T) {
	d := Default()

	require.Equal(t, string(core.LangEnglish), d.Lang)
	require.Equal(t, runtime.GOMAXPROCS(0), d.Workers)
	require.Equal(t, 0, d.ChannelDefaultCapacity)
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Config{}, c)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qi.yaml")
	content := "lang: ja\nworkers: 4\nchannel-default-capacity: 16\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ja", c.Lang)
	require.Equal(t, 4, c.Workers)
	require.Equal(t, 16, c.ChannelDefaultCapacity)
}

func TestResolvePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qi.yaml")
	content := "lang: ja\nworkers: 2\nchannel-default-capacity: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("QI_WORKERS", "6")
	t.Setenv("QI_LANG", "")
	t.Setenv("QI_CHANNEL_CAPACITY", "")

	cfg, err := Resolve(path, Config{})
	require.NoError(t, err)
	require.Equal(t, "ja", cfg.Lang, "file beats default")
	require.Equal(t, 6, cfg.Workers, "env beats file")
	require.Equal(t, 8, cfg.ChannelDefaultCapacity)

	flagged, err := Resolve(path, Config{Workers: 12})
	require.NoError(t, err)
	require.Equal(t, 12, flagged.Workers, "flag beats env and file")
}

func TestResolveNoFile(t *testing.T) {
	cfg, err := Resolve("", Config{})
	require.NoError(t, err)
	require.Equal(t, Default().Workers, cfg.Workers)
}

func TestApplySetsRuntime(t *testing.T) {
	rt := core.NewRuntime()
	cfg := Config{Lang: "ja", Workers: 3, ChannelDefaultCapacity: 5}

	cfg.Apply(rt)

	require.Equal(t, 3, rt.Workers)
	require.Equal(t, 5, rt.DefaultChannelCapacity)
	require.Equal(t, core.LangJapanese, core.CurrentLang())

	core.SetLang(core.LangEnglish)
}
