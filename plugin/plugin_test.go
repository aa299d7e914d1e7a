package plugin

import (
	"testing"

	"github.com/golangci/plugin-module-register/register"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(map[string]any{"functions": []any{"example.com/policy.Parse"}})
	require.NoError(t, err)
	require.Equal(t, register.LoadModeTypesInfo, p.GetLoadMode())

	analyzers, err := p.BuildAnalyzers()
	require.NoError(t, err)
	require.Len(t, analyzers, 1)
	require.Equal(t, "tokencheck", analyzers[0].Name)
	require.Equal(t, []string{"example.com/policy.Parse"}, p.(*Plugin).settings.Functions)
}

func TestNewWithoutSettings(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.Empty(t, p.(*Plugin).settings.Functions)
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, err := New(map[string]any{"functions": "not-a-list"})
	require.Error(t, err)
}

func TestRegistered(t *testing.T) {
	newPlugin, err := register.GetPlugin(Name)
	require.NoError(t, err)
	require.NotNil(t, newPlugin)
}
