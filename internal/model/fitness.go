package model

// FitterThan reports whether fitness a beats b. Fitness is
// offset - (initial mean x - final mean x) with forward along +x, so
// walking further forward yields a larger value. An outer minimizer
// should negate it.
func FitterThan(a, b float64) bool {
	return a > b
}
