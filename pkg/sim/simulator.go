package sim

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Simulator runs simulations. It is safe for concurrent use; every run draws
// from its own random stream.
type Simulator struct {
	seed   uint64
	stream atomic.Uint64
	radio  RadioConfig
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSeed makes runs reproducible: the n-th run of two simulators with the
// same seed sees the same random numbers.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
	}
}

// WithRadioConfig overrides the propagation parameters used by coverage maps.
func WithRadioConfig(cfg RadioConfig) Option {
	return func(s *Simulator) {
		s.radio = cfg
	}
}

// New creates a Simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		seed:  uint64(time.Now().UnixNano()),
		radio: DefaultRadioConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rng is the per-run random source.
type rng struct {
	src  rand.Source
	rand *rand.Rand
}

func (s *Simulator) newRNG() *rng {
	src := rand.NewPCG(s.seed, s.stream.Add(1))
	return &rng{src: src, rand: rand.New(src)}
}

// symbols draws n uniform symbol indices in [0, m).
func (r *rng) symbols(n, m int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.rand.IntN(m)
	}
	return out
}

// complexGaussian draws n circularly-symmetric Gaussian samples with the given total variance.
func (r *rng) complexGaussian(n int, variance float64) []complex128 {
	dist := r.normal(variance)
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(dist.Rand(), dist.Rand())
	}
	return out
}

func (r *rng) normal(variance float64) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance / 2), Src: r.src}
}
