package dispatch

import (
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
)

// Policy decides which destinations an account sends to in one pass.
type Policy interface {
	// Targets returns the ordered list of transfer destinations.
	Targets(destinations []common.Address) []common.Address
	// Name identifies the policy in logs.
	Name() string
}

// Sequential sends once to every destination, in order.
type Sequential struct{}

// Targets implements Policy.
func (Sequential) Targets(destinations []common.Address) []common.Address {
	return append([]common.Address(nil), destinations...)
}

// Name implements Policy.
func (Sequential) Name() string { return "sequential" }

// Random sends Count transfers per account, each to a destination drawn
// uniformly (with replacement) from the set.
type Random struct {
	Count int
	rng   *rand.Rand
}

// NewRandom creates a random policy drawing from rng.
func NewRandom(count int, rng *rand.Rand) *Random {
	return &Random{Count: count, rng: rng}
}

// Targets implements Policy.
func (r *Random) Targets(destinations []common.Address) []common.Address {
	if len(destinations) == 0 || r.Count <= 0 {
		return nil
	}
	out := make([]common.Address, r.Count)
	for i := range out {
		out[i] = destinations[r.rng.IntN(len(destinations))]
	}
	return out
}

// Name implements Policy.
func (r *Random) Name() string { return "random" }
