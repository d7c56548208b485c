// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Length is a fixed-point cable length in metres with 4 decimal places
// (scale = 1e4).
//
// Rationale:
// - Matches Postgres NUMERIC(15,4) semantics without floating point errors
// - Easy to store as BIGINT in DB (scaled integer)
// - JSON remains a number with up to 4 decimals
type Length int64

const LengthScale int64 = 10_000

// LengthFromInt creates a Length from whole metres.
func LengthFromInt(v int64) Length {
	return Length(v * LengthScale)
}

// LengthFromFloat64 creates a Length, rounding to the nearest 0.0001 m.
func LengthFromFloat64(v float64) Length {
	return Length(math.Round(v * float64(LengthScale)))
}

// LengthFromDecimal creates a Length from an arbitrary-precision decimal.
func LengthFromDecimal(d decimal.Decimal) Length {
	return Length(d.Mul(decimal.NewFromInt(LengthScale)).Round(0).IntPart())
}

// LengthFromInt64Scaled wraps an already-scaled integer (as stored in DB).
func LengthFromInt64Scaled(v int64) Length { return Length(v) }

// ParseLength parses a decimal string into a Length.
func ParseLength(s string) (Length, error) {
	return parseLengthString(s)
}

func (l Length) Int64Scaled() int64 { return int64(l) }

func (l Length) Float64() float64 { return float64(l) / float64(LengthScale) }

// Decimal returns the exact value as a decimal.Decimal.
func (l Length) Decimal() decimal.Decimal {
	return decimal.New(int64(l), -4)
}

func (l Length) IsZero() bool { return l == 0 }

func (l Length) IsPositive() bool { return l > 0 }

func (l Length) IsNegative() bool { return l < 0 }

func (l Length) Neg() Length { return -l }

func (l Length) Abs() Length {
	if l < 0 {
		return -l
	}
	return l
}

// MulInt scales a Length by a whole factor.
func (l Length) MulInt(n int64) Length { return Length(int64(l) * n) }

// ClampNonNegative floors the value at zero.
func (l Length) ClampNonNegative() Length {
	if l < 0 {
		return 0
	}
	return l
}

// String returns a decimal string with 4 fractional digits.
func (l Length) String() string {
	neg := l < 0
	v := l
	if neg {
		v = -v
	}
	intPart := int64(v) / LengthScale
	frac := int64(v) % LengthScale
	if neg {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}

// MarshalJSON encodes Length as JSON number (not string), preserving 4 digits.
func (l Length) MarshalJSON() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string and parses to
// fixed-point (4 digits). Null and the empty string coerce to zero.
func (l *Length) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = 0
		return nil
	}

	// If string, unquote first.
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = 0
			return nil
		}
		parsed, err := parseLengthString(s)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}

	// Otherwise treat as number token.
	parsed, err := parseLengthString(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func parseLengthString(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty length")
	}

	// Exponent form falls back to float parsing.
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse length: %w", err)
		}
		return LengthFromFloat64(f), nil
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	parts := strings.SplitN(s, ".", 2)
	intPartStr := parts[0]
	fracStr := ""
	if len(parts) == 2 {
		fracStr = parts[1]
	}

	if intPartStr == "" {
		intPartStr = "0"
	}
	intPart, err := strconv.ParseInt(intPartStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse length integer part: %w", err)
	}

	// Normalize fractional part to 4 digits (pad right, truncate extra digits).
	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
	}
	for len(fracStr) < 4 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse length fractional part: %w", err)
	}

	return Length(sign * (intPart*LengthScale + frac)), nil
}

// MinLength returns the lesser of two lengths.
func MinLength(a, b Length) Length {
	if a < b {
		return a
	}
	return b
}

// MaxLength returns the greater of two lengths.
func MaxLength(a, b Length) Length {
	if a > b {
		return a
	}
	return b
}
