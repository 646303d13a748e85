// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file defines the multiplication strategy abstraction to eliminate
// code duplication between different calculator implementations.
package fibonacci

//go:generate mockgen -source=strategy.go -destination=mocks/mock_strategy.go -package=mocks

import (
	"fmt"
	"math/big"

	"github.com/agbru/fibcalc/internal/bigfft"
)

// setOrReturn sets z to result if z is non-nil, otherwise returns result directly.
// This is a common pattern for methods that optionally reuse a destination buffer,
// eliminating code duplication in strategy implementations.
func setOrReturn(z, result *big.Int) *big.Int {
	if z != nil {
		z.Set(result)
		return z
	}
	return result
}

// MultiplicationStrategy defines the interface for multiplication and squaring
// operations used in Fibonacci calculations. Different strategies can choose
// between Karatsuba, FFT, or other multiplication algorithms.
type MultiplicationStrategy interface {
	// Multiply computes x * y and stores the result in z (which may be reused).
	Multiply(z, x, y *big.Int, opts Options) (*big.Int, error)

	// Square computes x * x and stores the result in z (which may be reused).
	Square(z, x *big.Int, opts Options) (*big.Int, error)

	// Name returns a descriptive name for the strategy.
	Name() string

	// ExecuteStep performs a complete doubling step calculation:
	// F(2k) = F(k) * (2*F(k+1) - F(k))
	// F(2k+1) = F(k+1)^2 + F(k)^2
	//
	// This specialized method allows strategies to optimize the doubling step
	// by reusing temporary results or transformations (e.g., FFT transforms).
	ExecuteStep(s *CalculationState, opts Options, inParallel bool) error
}

// mulFFT multiplies two *big.Int instances through bigfft.Mul. It ignores the
// fibonacci thresholds in Options, but bigfft.Mul applies its own word-count
// gate: only when both operands exceed that gate is the NTT-over-Fermat-ring
// engine used; smaller operands are multiplied with math/big.
func mulFFT(x, y *big.Int) (*big.Int, error) {
	return bigfft.Mul(x, y)
}

// sqrFFT squares x through bigfft.Sqr, which uses FFT squaring only above its
// own word-count gate. Squaring only transforms x once, saving roughly a
// third of the FFT work compared to a general multiply.
func sqrFFT(x *big.Int) (*big.Int, error) {
	return bigfft.Sqr(x)
}

// smartMultiply routes to FFT, optimized Karatsuba, or math/big multiplication
// depending on where the operand sizes fall relative to the supplied thresholds.
func smartMultiply(z, x, y *big.Int, fftThreshold, karatsubaThreshold int) (*big.Int, error) {
	bx := x.BitLen()
	by := y.BitLen()

	// Tier 1: FFT multiplication
	if fftThreshold > 0 && bx > fftThreshold && by > fftThreshold {
		return bigfft.MulTo(z, x, y)
	}

	// Tier 2: optimized Karatsuba multiplication
	if karatsubaThreshold > 0 && bx > karatsubaThreshold && by > karatsubaThreshold {
		if z == nil {
			z = new(big.Int)
		}
		return bigfft.KaratsubaMultiplyTo(z, x, y), nil
	}

	// Tier 3: standard math/big multiplication
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, y), nil
}

// smartSquare performs optimized squaring, choosing between standard Mul,
// optimized Karatsuba, and FFT squaring based on operand size.
func smartSquare(z, x *big.Int, fftThreshold, karatsubaThreshold int) (*big.Int, error) {
	bx := x.BitLen()

	// Tier 1: FFT squaring
	if fftThreshold > 0 && bx > fftThreshold {
		return bigfft.SqrTo(z, x)
	}

	// Tier 2: optimized Karatsuba squaring
	if karatsubaThreshold > 0 && bx > karatsubaThreshold {
		if z == nil {
			z = new(big.Int)
		}
		return bigfft.KaratsubaSqrTo(z, x), nil
	}

	// Tier 3: standard math/big squaring
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, x), nil
}

// executeDoublingStepFFT performs the three multiplications of a doubling step
// through FFTOnlyStrategy, i.e. through bigfft.Mul/Sqr regardless of the
// thresholds in opts; bigfft still applies its own word-count gate.
func executeDoublingStepFFT(s *CalculationState, opts Options, inParallel bool) error {
	return executeDoublingStepMultiplications(&FFTOnlyStrategy{}, s, opts, inParallel)
}

// AdaptiveStrategy uses smartMultiply and smartSquare to adaptively choose
// between Karatsuba (via math/big) and FFT-based multiplication based on
// operand sizes and thresholds. This is the strategy production paths select.
type AdaptiveStrategy struct{}

// Name returns the name of the adaptive strategy.
func (s *AdaptiveStrategy) Name() string {
	return "Adaptive (Karatsuba/FFT)"
}

// Multiply performs adaptive multiplication using smartMultiply.
func (s *AdaptiveStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	return smartMultiply(z, x, y, opts.FFTThreshold, opts.KaratsubaThreshold)
}

// Square performs adaptive squaring using smartSquare.
func (s *AdaptiveStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	return smartSquare(z, x, opts.FFTThreshold, opts.KaratsubaThreshold)
}

// ExecuteStep performs a doubling step, choosing between standard logic
// and FFT-routed multiplications based on operand size.
func (s *AdaptiveStrategy) ExecuteStep(state *CalculationState, opts Options, inParallel bool) error {
	if opts.FFTThreshold > 0 && state.FK1.BitLen() > opts.FFTThreshold {
		return executeDoublingStepFFT(state, opts, inParallel)
	}
	return executeDoublingStepMultiplications(s, state, opts, inParallel)
}

// FFTOnlyStrategy sends every operation to bigfft.Mul/Sqr, ignoring the
// thresholds in Options. Operands at or below bigfft's own word-count gate
// are still multiplied with math/big; larger ones use the FFT engine. This
// is useful for benchmarking FFT performance.
type FFTOnlyStrategy struct{}

// Name returns the name of the FFT-only strategy.
func (s *FFTOnlyStrategy) Name() string {
	return "FFT-Only"
}

// Multiply performs FFT-based multiplication using mulFFT.
func (s *FFTOnlyStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	res, err := mulFFT(x, y)
	if err != nil {
		return nil, fmt.Errorf("FFT multiplication failed: %w", err)
	}
	return setOrReturn(z, res), nil
}

// Square performs FFT-based squaring using sqrFFT.
func (s *FFTOnlyStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	res, err := sqrFFT(x)
	if err != nil {
		return nil, fmt.Errorf("FFT squaring failed: %w", err)
	}
	return setOrReturn(z, res), nil
}

// ExecuteStep performs a doubling step routing every multiply through the FFT engine.
func (s *FFTOnlyStrategy) ExecuteStep(state *CalculationState, opts Options, inParallel bool) error {
	return executeDoublingStepFFT(state, opts, inParallel)
}

// KaratsubaStrategy forces plain math/big multiplication for all operations,
// regardless of operand size. Primarily useful for testing and as the
// reference implementation for cross-checking the other strategies.
type KaratsubaStrategy struct{}

// Name returns the name of the Karatsuba-only strategy.
func (s *KaratsubaStrategy) Name() string {
	return "Karatsuba-Only"
}

// Multiply performs multiplication using math/big.Mul.
func (s *KaratsubaStrategy) Multiply(z, x, y *big.Int, opts Options) (*big.Int, error) {
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, y), nil
}

// Square performs squaring using math/big.Mul.
func (s *KaratsubaStrategy) Square(z, x *big.Int, opts Options) (*big.Int, error) {
	if z == nil {
		z = new(big.Int)
	}
	return z.Mul(x, x), nil
}

// ExecuteStep performs a standard doubling step using math/big multiplication.
func (s *KaratsubaStrategy) ExecuteStep(state *CalculationState, opts Options, inParallel bool) error {
	return executeDoublingStepMultiplications(s, state, opts, inParallel)
}
