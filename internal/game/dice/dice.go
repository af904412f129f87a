// Package dice provides the seedable random stream and the variate samplers
// used by the battle engine.
package dice

// Source is the randomness provider for the battle engine.
//
// Implementations are NOT required to be safe for concurrent use; the engine
// consumes a single stream sequentially.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// SeedableSource is a Source whose stream can be restarted from a seed.
//
// Postcondition: after Seed(s), the sequence of Float64 values is a pure
// function of s.
type SeedableSource interface {
	Source
	// Seed resets the stream to the state derived from seed.
	Seed(seed int64)
}
