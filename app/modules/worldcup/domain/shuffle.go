package worldcupdomain

import "math/rand/v2"

// Shuffler permutes n elements through swap. Implementations must produce
// every permutation with equal probability.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// ShuffleFunc adapts a plain function to the Shuffler interface.
type ShuffleFunc func(n int, swap func(i, j int))

func (f ShuffleFunc) Shuffle(n int, swap func(i, j int)) { f(n, swap) }

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewDefaultShuffler returns a Fisher-Yates shuffler backed by the runtime-seeded
// global source.
func NewDefaultShuffler() Shuffler {
	return globalShuffler{}
}

// NewSeededShuffler returns a reproducible Fisher-Yates shuffler.
func NewSeededShuffler(seed uint64) Shuffler {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IdentityShuffler leaves the pool in its given order.
var IdentityShuffler Shuffler = ShuffleFunc(func(int, func(i, j int)) {})
