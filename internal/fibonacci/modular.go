// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file implements the modular Fast Doubling variant: identical
// structure to the Fast Doubling driver in doubling_framework.go, but every
// intermediate is kept mod m so F(n) mod m can be produced without ever
// materializing the full value of F(n). The intended use is F(n) mod 10^k
// (Options.LastDigits), but any positive modulus is accepted.
package fibonacci

import (
	"context"
	"math/big"
	"math/bits"

	apperrors "github.com/agbru/fibcalc/internal/errors"
)

// ModularDoubling computes F(n) mod m using the Fast Doubling recurrence,
// reducing every intermediate modulo m at each step so the working set stays
// bounded by len(m) rather than growing with n.
type ModularDoubling struct {
	// Modulus is the modulus to reduce against. If nil, CalculateCore derives
	// it from Options.LastDigits as 10^LastDigits.
	Modulus *big.Int
}

// Name returns the descriptive name of the algorithm.
func (d *ModularDoubling) Name() string {
	return "Modular Fast Doubling (mod m)"
}

// modulusFor resolves the modulus to use: an explicit Modulus on the
// receiver takes priority, otherwise Options.LastDigits selects 10^k.
func (d *ModularDoubling) modulusFor(opts Options) (*big.Int, error) {
	if d.Modulus != nil {
		if d.Modulus.Sign() <= 0 {
			return nil, apperrors.NewConfigError("modular doubling: modulus must be positive")
		}
		return d.Modulus, nil
	}
	if opts.LastDigits <= 0 {
		return nil, apperrors.NewConfigError("modular doubling: requires a positive modulus or Options.LastDigits")
	}
	m := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(opts.LastDigits)), nil)
	return m, nil
}

// CalculateCore computes F(n) mod m by scanning the bits of n from MSB to
// LSB, exactly as the unreduced Fast Doubling driver does, but reducing
// every intermediate modulo m. Each subtraction is implemented as
// add-before-subtract (add m once before subtracting) so intermediates never
// go negative, per the teacher's "no negative big.Int in the hot loop"
// discipline used throughout doubling_framework.go.
func (d *ModularDoubling) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	m, err := d.modulusFor(opts)
	if err != nil {
		return nil, err
	}

	fk := big.NewInt(0)
	fk1 := big.NewInt(1)
	if n == 0 {
		return fk, nil
	}

	t1 := new(big.Int) // 2*fk1 - fk, reduced mod m
	t2 := new(big.Int) // fk^2 mod m
	t3 := new(big.Int) // fk1^2 mod m
	t4 := new(big.Int) // fk * t1 mod m, i.e. F(2k) mod m

	numBits := bits.Len64(n)
	totalWork := CalcTotalWork(numBits)
	powers := PrecomputePowers4(numBits)
	workDone := 0.0
	lastReported := -1.0

	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewCancelledError("modular doubling calculation canceled", err)
		}

		// t1 = (2*fk1 - fk) mod m, add m once before subtracting to avoid
		// a transient negative value.
		t1.Lsh(fk1, 1)
		t1.Add(t1, m)
		t1.Sub(t1, fk)
		t1.Mod(t1, m)

		// F(2k) = fk * t1 mod m
		t4.Mul(fk, t1)
		t4.Mod(t4, m)

		// F(2k+1) = fk^2 + fk1^2 mod m
		t2.Mul(fk, fk)
		t3.Mul(fk1, fk1)
		t2.Add(t2, t3)
		t2.Mod(t2, m)

		fk.Set(t4)
		fk1.Set(t2)

		if (n>>uint(i))&1 == 1 {
			// (fk, fk1) <- (fk1, fk + fk1) mod m
			t3.Add(fk, fk1)
			t3.Mod(t3, m)
			fk.Set(fk1)
			fk1.Set(t3)
		}

		workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, i, numBits, powers)
	}

	return fk, nil
}

func init() {
	_ = RegisterCalculator("modular", func() coreCalculator { return &ModularDoubling{} })
}
