package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func TestResolveReadsTopLevelKeys(t *testing.T) {
	content := "workers: 4\nlang: ja\n"

	resolver, err := resolve(strings.NewReader(content))
	require.NoError(t, err)

	val, err := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "workers"}})
	require.NoError(t, err)
	require.Equal(t, "4", val)

	val, err = resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "lang"}})
	require.NoError(t, err)
	require.Equal(t, "ja", val)
}

func TestResolveMissingKeyReturnsNil(t *testing.T) {
	resolver, err := resolve(strings.NewReader("lang: en\n"))
	require.NoError(t, err)

	val, err := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "missing"}})
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestResolveUnderscoreHyphenMapping(t *testing.T) {
	resolver, err := resolve(strings.NewReader("channel_default_capacity: 16\n"))
	require.NoError(t, err)

	val, err := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "channel-default-capacity"}})
	require.NoError(t, err)
	require.Equal(t, "16", val)
}

func TestResolveInvalidYAMLReturnsEmptyResolver(t *testing.T) {
	resolver, err := resolve(strings.NewReader("not: valid: yaml: ["))
	require.NoError(t, err)

	val, err := resolver.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "lang"}})
	require.NoError(t, err)
	require.Nil(t, val)
}
