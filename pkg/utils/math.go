package utils

// Min returns the minimum of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Binomial returns n choose k. It returns 0 when k > n or either is negative.
func Binomial(n, k int) uint64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := uint64(1)
	for i := 1; i <= k; i++ {
		// exact at every step: result is C(n-k+i-1, i-1) before the update
		result = result * uint64(n-k+i) / uint64(i)
	}
	return result
}
