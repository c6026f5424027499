package csvio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Loadable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Synthetic")
	s := Synthetic{Advertisers: 4, Seeders: 3, MaxSpread: 10, Budget: 50, Seed: 9}
	require.NoError(t, Generate(dir, "spread.csv", "adv.csv", s))

	pool, err := NewLoader(dir, "spread.csv", "adv.csv", false).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, pool.Len())
	for _, a := range pool.Advertisers() {
		assert.Len(t, a.Spread, 3)
		assert.InDelta(t, 50, a.Budget, 1e-12)
		assert.GreaterOrEqual(t, a.ValuePerEngagement, 0.0)
		assert.Less(t, a.ValuePerEngagement, 1.0)
		for _, q := range a.Spread {
			assert.GreaterOrEqual(t, q, 0.0)
			assert.Less(t, q, 10.0)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	s := DefaultSynthetic(5, 42)
	require.NoError(t, Generate(a, "s.csv", "a.csv", s))
	require.NoError(t, Generate(b, "s.csv", "a.csv", s))

	for _, name := range []string{"s.csv", "a.csv"} {
		x, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		y, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		assert.Equal(t, x, y, name)
	}
}
