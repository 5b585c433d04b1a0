package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that parses qi.yaml-format config
// files (SPEC_FULL.md A.3) and exposes their top-level keys as flag values.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/qi.yaml")
//
// Flag names with hyphens (e.g. "channel-default-capacity") match config
// keys of the same spelling. Command-line flags override config file values,
// which in turn override values resolved from the environment.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return yamlResolver{}, nil
	}

	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		// Parse error - return empty config, letting Kong fall through to
		// lower-precedence sources rather than aborting the whole CLI.
		return yamlResolver{}, nil
	}

	return yamlResolver(raw), nil
}

// yamlResolver implements [kong.Resolver] for qi.yaml-format configs.
type yamlResolver map[string]any

// Validate implements [kong.Resolver].
func (r yamlResolver) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r yamlResolver) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	if value, ok := r[name]; ok {
		return normalizeYAMLValue(value), nil
	}

	if value, ok := r[underscoreName]; ok {
		return normalizeYAMLValue(value), nil
	}

	return nil, nil
}

// normalizeYAMLValue converts a decoded YAML scalar to the string form Kong
// expects when resolving a flag value.
func normalizeYAMLValue(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return v
	}
}
