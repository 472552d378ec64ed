package vm

import (
	"math/rand/v2"
	"time"
)

// RandomSource supplies the random bytes used by the CXNN instruction.
type RandomSource interface {
	Byte() uint8
}

type pcgSource struct {
	rng *rand.Rand
}

// NewRandomSource returns a random source seeded from the current time.
func NewRandomSource() RandomSource {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

// NewSeededSource returns a random source that produces the same sequence
// for the same seed.
func NewSeededSource(seed uint64) RandomSource {
	return &pcgSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

func (s *pcgSource) Byte() uint8 {
	return uint8(s.rng.Uint32())
}
