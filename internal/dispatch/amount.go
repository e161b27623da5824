package dispatch

import (
	"math/big"
	"math/rand/v2"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// AmountSource draws transfer amounts uniformly from [Min, Max] wei.
// It is not safe for concurrent use; the dispatcher is single-threaded.
type AmountSource struct {
	rng  *rand.Rand
	min  *big.Int
	span *big.Int // max - min + 1
}

// NewAmountSource creates a source over the inclusive range [lo, hi].
func NewAmountSource(rng *rand.Rand, lo, hi *big.Int) (*AmountSource, error) {
	if lo == nil || hi == nil || lo.Sign() < 0 || lo.Cmp(hi) > 0 {
		return nil, trerr.WithDetails(trerr.ErrInvalidAmount, map[string]string{
			"reason": "amount range must satisfy 0 <= min <= max",
		})
	}
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, big.NewInt(1))
	return &AmountSource{rng: rng, min: new(big.Int).Set(lo), span: span}, nil
}

// NewSeededRand returns a PCG generator. The same seed yields the same
// sequence of amounts and destination picks.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // G404: amounts need no cryptographic randomness
}

// Next returns a fresh amount. Each call is independent of the previous.
func (s *AmountSource) Next() *big.Int {
	if s.span.IsUint64() {
		return new(big.Int).Add(s.min, new(big.Int).SetUint64(s.rng.Uint64N(s.span.Uint64())))
	}
	return new(big.Int).Add(s.min, s.bigN())
}

// bigN draws uniformly from [0, span) by rejection sampling when the span
// does not fit in 64 bits.
func (s *AmountSource) bigN() *big.Int {
	bits := s.span.BitLen()
	words := (bits + 63) / 64
	for {
		n := new(big.Int)
		for i := 0; i < words; i++ {
			n.Lsh(n, 64)
			n.Or(n, new(big.Int).SetUint64(s.rng.Uint64()))
		}
		excess := uint(words*64 - bits)
		n.Rsh(n, excess)
		if n.Cmp(s.span) < 0 {
			return n
		}
	}
}
