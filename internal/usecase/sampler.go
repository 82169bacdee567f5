package usecase

import "math/rand"

// Sampler supplies the randomness the simulator injects for slippage and
// execution-probability modeling. It is an explicit dependency so tests can
// fix a seed or disable randomness entirely.
type Sampler interface {
	// Uniform returns a draw from [lo, hi).
	Uniform(lo, hi float64) float64
	// Draw returns a draw from [0, 1), compared against the execution
	// probability gate.
	Draw() float64
}

type randSampler struct {
	rng *rand.Rand
}

// NewRandomSampler returns a Sampler backed by a seeded generator. The same
// seed reproduces the same run.
func NewRandomSampler(seed int64) Sampler {
	return &randSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *randSampler) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *randSampler) Draw() float64 {
	return s.rng.Float64()
}

// zeroSampler disables randomness: no slippage, every signal executes.
type zeroSampler struct{}

// NewZeroSampler returns a Sampler with slippage pinned to zero and the
// execution gate always passing. Used for deterministic runs.
func NewZeroSampler() Sampler { return zeroSampler{} }

func (zeroSampler) Uniform(lo, hi float64) float64 { return 0 }
func (zeroSampler) Draw() float64                  { return 0 }
