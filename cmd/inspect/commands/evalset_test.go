package commands

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/model"
)

func TestWrapWithCache(t *testing.T) {
	dir := t.TempDir()
	models := []core.Model{
		model.MockModel{NameValue: "mockllm/a"},
		model.MockModel{NameValue: "mockllm/b"},
	}

	wrapped, err := wrapWithCache(models, dir)
	require.NoError(t, err)
	require.Len(t, wrapped, 2)
	require.Equal(t, "mockllm/a", wrapped[0].Name())
	require.Equal(t, "mockllm/b", wrapped[1].Name())

	// Responses land on disk under the cache directory.
	_, err = wrapped[0].Generate(context.Background(), "prompt", core.GenerateOptions{})
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestBuildScorer(t *testing.T) {
	for _, name := range []string{"exact", "includes", "numeric"} {
		sc, err := buildScorer(name)
		require.NoError(t, err)
		require.Equal(t, name, sc.Name())
	}
	_, err := buildScorer("nope")
	require.Error(t, err)
}
