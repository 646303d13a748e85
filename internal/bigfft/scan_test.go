package bigfft

import (
	"math/big"
	"strings"
	"testing"
)

func TestFromDecimalString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Zero", "0", "0"},
		{"One", "1", "1"},
		{"Small number", "123", "123"},
		{"Large number", "123456789012345678901234567890", "123456789012345678901234567890"},
		{"Very large number", strings.Repeat("9", 2000), strings.Repeat("9", 2000)},
		{"Number with leading zeros", "000123", "123"},
		{"Large power of 10", "1" + strings.Repeat("0", 100), "1" + strings.Repeat("0", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := FromDecimalString(tt.input)
			if err != nil {
				t.Fatalf("FromDecimalString failed: %v", err)
			}
			expected := new(big.Int)
			expected.SetString(tt.expected, 10)

			if result.Cmp(expected) != 0 {
				t.Errorf("FromDecimalString(%q) = %s, want %s", tt.input, result.String(), expected.String())
			}
		})
	}
}

func TestFromDecimalString_EdgeCases(t *testing.T) {
	t.Parallel()
	t.Run("Empty string", func(t *testing.T) {
		t.Parallel()
		result, err := FromDecimalString("")
		if err != nil {
			t.Fatalf("FromDecimalString failed: %v", err)
		}
		if result.Sign() != 0 {
			t.Errorf("Empty string should result in zero, got %s", result.String())
		}
	})

	t.Run("Single digit", func(t *testing.T) {
		t.Parallel()
		for i := 0; i <= 9; i++ {
			input := string(rune('0' + i))
			result, err := FromDecimalString(input)
			if err != nil {
				t.Fatalf("FromDecimalString failed: %v", err)
			}
			expected := big.NewInt(int64(i))
			if result.Cmp(expected) != 0 {
				t.Errorf("FromDecimalString(%q) = %s, want %s", input, result.String(), expected.String())
			}
		}
	})

	t.Run("Very long string", func(t *testing.T) {
		t.Parallel()
		longStr := strings.Repeat("9", 5000)
		result, err := FromDecimalString(longStr)
		if err != nil {
			t.Fatalf("FromDecimalString failed: %v", err)
		}
		expected := new(big.Int)
		expected.SetString(longStr, 10)
		if result.Cmp(expected) != 0 {
			t.Error("Very long string conversion failed")
		}
	})

	t.Run("String just above threshold", func(t *testing.T) {
		t.Parallel()
		longStr := "1" + strings.Repeat("0", 1232)
		result, err := FromDecimalString(longStr)
		if err != nil {
			t.Fatalf("FromDecimalString failed: %v", err)
		}
		expected := new(big.Int)
		expected.SetString(longStr, 10)
		if result.Cmp(expected) != 0 {
			t.Error("String just above threshold conversion failed")
		}
	})

	t.Run("String at threshold", func(t *testing.T) {
		t.Parallel()
		longStr := strings.Repeat("9", quadraticScanThreshold)
		result, err := FromDecimalString(longStr)
		if err != nil {
			t.Fatalf("FromDecimalString failed: %v", err)
		}
		expected := new(big.Int)
		expected.SetString(longStr, 10)
		if result.Cmp(expected) != 0 {
			t.Error("String at threshold conversion failed")
		}
	})

	t.Run("Invalid digits below threshold", func(t *testing.T) {
		t.Parallel()
		if _, err := FromDecimalString("12a45"); err == nil {
			t.Error("expected an error for a non-decimal string below the threshold")
		}
	})

	t.Run("Invalid digits above threshold", func(t *testing.T) {
		t.Parallel()
		bad := strings.Repeat("9", quadraticScanThreshold+100) + "x"
		if _, err := FromDecimalString(bad); err == nil {
			t.Error("expected an error for a non-decimal string above the threshold")
		}
	})
}

func TestFromDecimalString_Consistency(t *testing.T) {
	t.Parallel()
	testStrings := []string{
		"0",
		"1",
		"10",
		"100",
		"1000",
		"123456789",
		strings.Repeat("9", 100),
		strings.Repeat("9", 1000),
		strings.Repeat("9", 2000),
		strings.Repeat("1", 3000),
	}

	for _, s := range testStrings {
		t.Run(s[:min(20, len(s))], func(t *testing.T) {
			t.Parallel()
			result1, err := FromDecimalString(s)
			if err != nil {
				t.Fatalf("FromDecimalString failed: %v", err)
			}
			result2 := new(big.Int)
			result2.SetString(s, 10)

			if result1.Cmp(result2) != 0 {
				t.Errorf("FromDecimalString(%q) = %s, but SetString gives %s",
					s, result1.String(), result2.String())
			}
		})
	}
}
