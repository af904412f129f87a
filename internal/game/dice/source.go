package dice

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// pcgSource implements SeedableSource on top of the PCG generator.
//
// Invariant: rng always draws from pcg, so re-seeding pcg restarts rng.
type pcgSource struct {
	pcg *mrand.PCG
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic SeedableSource seeded with seed.
//
// Postcondition: two sources created with the same seed yield identical streams.
func NewSeededSource(seed int64) SeedableSource {
	pcg := mrand.NewPCG(uint64(seed), uint64(seed))
	return &pcgSource{pcg: pcg, rng: mrand.New(pcg)}
}

// Seed restarts the stream from seed.
func (p *pcgSource) Seed(seed int64) {
	p.pcg.Seed(uint64(seed), uint64(seed))
}

// Float64 returns a value in [0, 1).
func (p *pcgSource) Float64() float64 {
	return p.rng.Float64()
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: values are cryptographically secure and uniformly distributed in [0, 1).
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It cannot be seeded
// and is only used to pick base seeds.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a value in [0, 1) built from 53 random bits.
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// RandomSeed draws a fresh positive seed from src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, 2^53].
func RandomSeed(src Source) int64 {
	return int64(src.Float64()*(1<<53)) + 1
}
