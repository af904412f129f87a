package dice

import "go.uber.org/zap"

// Roller wraps a SeedableSource and a logger. It is the single random stream
// threaded through the battle engine.
//
// Roller is NOT safe for concurrent use: matchups sharing one Roller must run
// strictly one after another for their results to be reproducible.
type Roller struct {
	src    SeedableSource
	logger *zap.Logger
	draws  int64
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src SeedableSource, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Seed restarts the underlying stream from seed and logs it at debug level.
func (r *Roller) Seed(seed int64) {
	r.src.Seed(seed)
	r.logger.Debug("stream seeded", zap.Int64("seed", seed), zap.Int64("draws_before", r.draws))
}

// Float64 returns the next uniform value from the stream.
func (r *Roller) Float64() float64 {
	r.draws++
	return r.src.Float64()
}

// Draws reports how many uniform values have been consumed since creation.
func (r *Roller) Draws() int64 {
	return r.draws
}

// Choose selects an index according to weights.
//
// Precondition: see WeightedIndex.
func (r *Roller) Choose(weights []float64) int {
	return WeightedIndex(r, weights)
}

// Pick selects a uniform index in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Pick(n int) int {
	return Index(r, n)
}

// Beta draws a Beta(a, b) variate.
//
// Precondition: a > 0 and b > 0.
func (r *Roller) Beta(a, b float64) float64 {
	return Beta(r, a, b)
}
