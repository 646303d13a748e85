// Package fibonacci provides implementations for calculating Fibonacci numbers.
package fibonacci

import (
	"context"
	"math/big"
)

// MatrixExponentiation computes F(n) via binary exponentiation of the
// Fibonacci matrix Q = [[1,1],[1,0]], using F(n) = Q^n[0][1]. It serves as
// the independent cross-check algorithm against Fast Doubling: the two use
// different recurrences and share only the low-level multiply/square
// dispatch, so an agreement between them is strong evidence of correctness.
//
// The exponentiation loop drives 2x2 matrix multiplications through the same
// smart multiply/square dispatch used by the doubling strategies, and takes
// the Strassen-Winograd 7-multiplication shortcut once operands cross
// StrassenThreshold bits, further exploiting the fact that every squared
// matrix in the loop is symmetric.
type MatrixExponentiation struct{}

// Name returns the descriptive name of the algorithm.
func (c *MatrixExponentiation) Name() string {
	return "Matrix Exponentiation (O(log n), Parallel, Zero-Alloc)"
}

// CalculateCore computes F(n) using the matrix exponentiation method.
func (c *MatrixExponentiation) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	state := acquireMatrixState()
	defer releaseMatrixState(state)

	framework := NewMatrixFramework()
	return framework.ExecuteMatrixLoop(ctx, reporter, n, opts, state)
}
