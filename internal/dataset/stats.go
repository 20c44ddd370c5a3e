package dataset

import (
	"math"
	"slices"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev returns the standard deviation with ddof degrees of freedom
// removed (0 for population, 1 for sample).
func stddev(xs []float64, ddof int) float64 {
	n := len(xs) - ddof
	if n <= 0 {
		return math.NaN()
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(n))
}

// quantile uses linear interpolation between closest ranks.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func median(xs []float64) float64 {
	return quantile(xs, 0.5)
}

// mode returns the most frequent value and its count. Ties go to the
// lexically smallest value.
func mode(values []string) (string, int) {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	var best string
	bestN := 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
