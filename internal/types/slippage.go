// internal/types/slippage.go
package types

import "math"

// MaxSlippageBpsDefault is the canonical maximum slippage for burn swaps.
const MaxSlippageBpsDefault = 50

// MinAmountOutBps computes the minimum acceptable swap output for a given
// expected output and slippage tolerance in basis points.
func MinAmountOutBps(expectedAmount float64, slippageBps int) uint64 {
	if slippageBps <= 0 {
		return uint64(math.Floor(expectedAmount))
	}
	multiplier := 1.0 - float64(slippageBps)/10000.0
	return uint64(math.Floor(expectedAmount * multiplier))
}
