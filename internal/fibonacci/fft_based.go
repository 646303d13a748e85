// Package fibonacci provides implementations for calculating Fibonacci numbers.
package fibonacci

import (
	"context"
	"math/big"
	"runtime"
)

// FFTBasedCalculator computes F(n) via the Fast Doubling recurrence, forcing
// every multiplication and squaring through the NTT-over-Fermat-ring engine
// (internal/bigfft) regardless of operand size. It exists primarily for
// benchmarking the FFT path in isolation and for cross-checking its result
// against OptimizedFastDoubling and MatrixExponentiation.
type FFTBasedCalculator struct{}

// Name returns the descriptive name of the algorithm.
func (c *FFTBasedCalculator) Name() string {
	return "FFT-Based Fast Doubling (Schönhage-Strassen)"
}

// CalculateCore computes F(n) by driving the shared DoublingFramework with
// FFTOnlyStrategy, so every inner multiply is an NTT transform regardless of
// how small the operands are at the start of the loop.
func (c *FFTBasedCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	s := AcquireState()
	defer ReleaseState(s)

	normalizedOpts := normalizeOptions(opts)
	useParallel := runtime.GOMAXPROCS(0) > 1 && normalizedOpts.ParallelThreshold > 0

	framework := NewDoublingFramework(&FFTOnlyStrategy{})
	return framework.ExecuteDoublingLoop(ctx, reporter, n, normalizedOpts, s, useParallel)
}
