package dice

import "math"

const (
	log4         = 1.3862943611198906 // math.Log(4)
	sgMagicConst = 2.504077396776274  // 1 + math.Log(4.5)
)

// WeightedIndex selects an index into weights with probability proportional
// to each weight, drawing exactly one value from src.
//
// The draw is u*total bisected against the cumulative weights: the first index
// whose cumulative weight exceeds the scaled draw is returned.
//
// Precondition: len(weights) >= 1; all weights >= 0; sum(weights) > 0.
// Postcondition: Returns an index in [0, len(weights)).
func WeightedIndex(src Source, weights []float64) int {
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	x := src.Float64() * total
	lo, hi := 0, len(cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if x < cum[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Index returns a uniformly distributed index in [0, n), drawing exactly one
// value from src.
//
// Precondition: n > 0. Panics with "dice: Index called with n <= 0" otherwise.
func Index(src Source, n int) int {
	if n <= 0 {
		panic("dice: Index called with n <= 0")
	}
	return int(math.Floor(src.Float64() * float64(n)))
}

// Gamma draws a Gamma(alpha, beta) variate (shape alpha, scale beta).
//
// alpha == 1 uses inversion of the exponential distribution, alpha > 1 uses
// Cheng's GB rejection algorithm and 0 < alpha < 1 uses the Ahrens-Dieter GS
// algorithm. The number of values consumed from src depends on the rejection
// steps, but is a pure function of the stream.
//
// Precondition: alpha > 0 and beta > 0. Panics otherwise.
// Postcondition: Returns a value >= 0.
func Gamma(src Source, alpha, beta float64) float64 {
	if alpha <= 0 || beta <= 0 {
		panic("dice: Gamma requires alpha > 0 and beta > 0")
	}

	switch {
	case alpha > 1:
		ainv := math.Sqrt(2*alpha - 1)
		bbb := alpha - log4
		ccc := alpha + ainv
		for {
			u1 := src.Float64()
			if !(1e-7 < u1 && u1 < 0.9999999) {
				continue
			}
			u2 := 1 - src.Float64()
			v := math.Log(u1/(1-u1)) / ainv
			x := alpha * math.Exp(v)
			z := u1 * u1 * u2
			r := bbb + ccc*v - x
			if r+sgMagicConst-4.5*z >= 0 || r >= math.Log(z) {
				return x * beta
			}
		}

	case alpha == 1:
		return -math.Log(1-src.Float64()) * beta

	default:
		var x float64
		for {
			u := src.Float64()
			b := (math.E + alpha) / math.E
			p := b * u
			if p <= 1 {
				x = math.Pow(p, 1/alpha)
			} else {
				x = -math.Log((b - p) / alpha)
			}
			u1 := src.Float64()
			if p > 1 {
				if u1 <= math.Pow(x, alpha-1) {
					break
				}
			} else if u1 <= math.Exp(-x) {
				break
			}
		}
		return x * beta
	}
}

// Beta draws a Beta(a, b) variate as the ratio of two Gamma variates.
//
// Precondition: a > 0 and b > 0.
// Postcondition: Returns a value in [0, 1).
func Beta(src Source, a, b float64) float64 {
	y := Gamma(src, a, 1)
	if y == 0 {
		return 0
	}
	return y / (y + Gamma(src, b, 1))
}
