package colorcode

import (
	"image/color"
	"math/rand/v2"
	"sync"
	"time"
)

// RandomColor produces opaque colors for the random fallback policy.
type RandomColor interface {
	RandomColor() color.NRGBA
}

// Rand is a RandomColor backed by a PCG generator. It is safe for concurrent
// use.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a generator for seed. A zero seed is replaced by the
// current time.
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Rand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Rand) RandomColor() color.NRGBA {
	g.mu.Lock()
	v := g.rng.Uint32()
	g.mu.Unlock()
	return color.NRGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 0xff}
}

// Fixed always returns the same color. Useful where a deterministic
// fallback is wanted.
type Fixed color.NRGBA

func (f Fixed) RandomColor() color.NRGBA { return color.NRGBA(f) }
