package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/model"
)

func TestGetMockModel(t *testing.T) {
	m, err := Default().Get("mockllm/gpt-test")
	require.NoError(t, err)
	require.Equal(t, "mockllm/gpt-test", m.Name())
}

func TestGetRejectsBareName(t *testing.T) {
	_, err := Default().Get("gpt-test")
	require.Error(t, err)
}

func TestGetUnknownProvider(t *testing.T) {
	_, err := Default().Get("nope/gpt-test")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown provider")
}

func TestRegisterOverrides(t *testing.T) {
	r := New()
	r.Register("custom", func(name string) (core.Model, error) {
		return model.MockModel{NameValue: "custom/" + name, ResponseText: "ok"}, nil
	})

	m, err := r.Get("custom/one")
	require.NoError(t, err)
	require.Equal(t, "custom/one", m.Name())
}

func TestProvidersSorted(t *testing.T) {
	providers := Default().Providers()
	require.Contains(t, providers, "mockllm")
	require.Contains(t, providers, "openai")
	require.Contains(t, providers, "anthropic")
	for i := 1; i < len(providers); i++ {
		require.LessOrEqual(t, providers[i-1], providers[i])
	}
}
