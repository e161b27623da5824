package dispatch

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialPolicy(t *testing.T) {
	t.Parallel()
	dests := []common.Address{destA, destB, destC}

	got := Sequential{}.Targets(dests)
	assert.Equal(t, dests, got)
	assert.Equal(t, "sequential", Sequential{}.Name())

	got[0] = destC
	assert.Equal(t, destA, dests[0], "targets must not alias the input")
	assert.Empty(t, Sequential{}.Targets(nil))
}

func TestRandomPolicy(t *testing.T) {
	t.Parallel()
	dests := []common.Address{destA, destB, destC}

	t.Run("draws count targets from the set", func(t *testing.T) {
		t.Parallel()
		p := NewRandom(50, NewSeededRand(5))
		got := p.Targets(dests)
		require.Len(t, got, 50)
		for _, d := range got {
			assert.Contains(t, dests, d)
		}
		assert.Equal(t, "random", p.Name())
	})

	t.Run("same seed same picks", func(t *testing.T) {
		t.Parallel()
		a := NewRandom(10, NewSeededRand(11)).Targets(dests)
		b := NewRandom(10, NewSeededRand(11)).Targets(dests)
		assert.Equal(t, a, b)
	})

	t.Run("zero count or no destinations", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, NewRandom(0, NewSeededRand(1)).Targets(dests))
		assert.Nil(t, NewRandom(3, NewSeededRand(1)).Targets(nil))
	})
}
