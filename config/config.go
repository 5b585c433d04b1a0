// Package config loads Qi's process-wide configuration: the i18n
// language selector, the concurrency runtime's worker-pool size, and
// the default channel capacity (spec §5/§6, SPEC_FULL.md A.3).
// Resolution follows the teacher's cli/resolver.go precedence style:
// explicit flag, then environment variable, then config file, then
// built-in default.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/qi-lang/qi/core"
)

// Config is the resolved set of process-wide settings.
type Config struct {
	Lang                   string `yaml:"lang"`
	Workers                int    `yaml:"workers"`
	ChannelDefaultCapacity int    `yaml:"channel-default-capacity"`
}

// Default returns the built-in configuration: English messages, a
// worker pool sized to GOMAXPROCS, and unbounded (capacity 0) channels.
func Default() Config {
	return Config{
		Lang:                   string(core.LangEnglish),
		Workers:                runtime.GOMAXPROCS(0),
		ChannelDefaultCapacity: 0,
	}
}

// Load reads and unmarshals a YAML config file at path. A missing file
// is not an error: it resolves to the zero Config, letting Resolve fall
// through to lower-precedence sources.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}

		return Config{}, core.ErrIO.Wrap(err)
	}

	var c Config

	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, core.ErrIO.Wrap(err)
	}

	return c, nil
}

// Resolve merges, in increasing precedence, the built-in default, a
// config file at path (if any), environment variables (QI_LANG,
// QI_WORKERS, QI_CHANNEL_CAPACITY), and explicit flag overrides. Any
// zero-value flag field is treated as "not set" and does not override
// a lower-precedence source.
func Resolve(path string, flags Config) (Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return Config{}, err
		}

		merge(&cfg, fileCfg)
	}

	merge(&cfg, fromEnv())
	merge(&cfg, flags)

	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.Lang != "" {
		dst.Lang = src.Lang
	}

	if src.Workers != 0 {
		dst.Workers = src.Workers
	}

	if src.ChannelDefaultCapacity != 0 {
		dst.ChannelDefaultCapacity = src.ChannelDefaultCapacity
	}
}

func fromEnv() Config {
	var c Config

	c.Lang = os.Getenv("QI_LANG")

	if v := os.Getenv("QI_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}

	if v := os.Getenv("QI_CHANNEL_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChannelDefaultCapacity = n
		}
	}

	return c
}

// Apply installs cfg into the process: the i18n language selector and
// rt's worker/channel-capacity fields.
func (c Config) Apply(rt *core.Runtime) {
	switch c.Lang {
	case string(core.LangJapanese):
		core.SetLang(core.LangJapanese)
	default:
		core.SetLang(core.LangEnglish)
	}

	if c.Workers > 0 {
		rt.Workers = c.Workers
	}

	rt.DefaultChannelCapacity = c.ChannelDefaultCapacity
}
