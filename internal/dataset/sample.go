package dataset

import (
	"math"
	"math/rand/v2"
)

// Sampler draws from the distributions the generator needs. All draws come
// from one seeded PCG stream, so a fixed seed fixes every value.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler seeded with (seed, seed).
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Float64 returns a uniform draw in [0, 1).
func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

// Normal returns a draw from N(mean, std²).
func (s *Sampler) Normal(mean, std float64) float64 {
	return s.rng.NormFloat64()*std + mean
}

// IntRange returns a uniform integer in [lo, hi). hi must be greater than lo.
func (s *Sampler) IntRange(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo)
}

// Index returns a uniform index in [0, n).
func (s *Sampler) Index(n int) int {
	return s.rng.IntN(n)
}

// Poisson returns a draw from Poisson(lambda) using Knuth's multiplication
// method, which is exact and fast for the small rates used here.
func (s *Sampler) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := s.rng.Float64()
	for p > limit {
		k++
		p *= s.rng.Float64()
	}
	return k
}
