package chip8

import "math/rand/v2"

// RandomSource provides the bytes used by the random instruction.
type RandomSource interface {
	NextByte() byte
}

// NewRandomSource returns a deterministic source for the given seed.
func NewRandomSource(seed uint64) RandomSource {
	return &pcgSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

type pcgSource struct {
	rnd *rand.Rand
}

func (s *pcgSource) NextByte() byte {
	return byte(s.rnd.UintN(256))
}

// systemSource uses the automatically seeded global generator.
type systemSource struct{}

func (systemSource) NextByte() byte {
	return byte(rand.UintN(256))
}
