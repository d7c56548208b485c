package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{"0", 0, false},
		{"1", 10_000, false},
		{"1.5", 15_000, false},
		{"-2.25", -22_500, false},
		{"+3", 30_000, false},
		{"0.00015", 1, false}, // extra digits truncated
		{"1234.5678", 12_345_678, false},
		{".5", 5_000, false},
		{"1e2", 1_000_000, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLength(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLengthUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Length
	}{
		{"number", `12.5`, LengthFromFloat64(12.5)},
		{"string number", `"12.5"`, LengthFromFloat64(12.5)},
		{"integer", `100`, LengthFromInt(100)},
		{"null coerces to zero", `null`, 0},
		{"empty string coerces to zero", `""`, 0},
		{"negative", `-3.75`, LengthFromFloat64(-3.75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Length
			require.NoError(t, json.Unmarshal([]byte(tt.in), &l))
			assert.Equal(t, tt.want, l)
		})
	}

	var l Length
	assert.Error(t, json.Unmarshal([]byte(`"not a number"`), &l))
}

func TestLengthMarshalJSON(t *testing.T) {
	data, err := json.Marshal(LengthFromFloat64(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5000", string(data))

	data, err = json.Marshal(LengthFromFloat64(-0.25))
	require.NoError(t, err)
	assert.Equal(t, "-0.2500", string(data))
}

func TestLengthRoundTrip(t *testing.T) {
	orig := LengthFromFloat64(1234.5678)

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Length
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig, back)
}

func TestLengthArithmeticHelpers(t *testing.T) {
	assert.Equal(t, Length(0), LengthFromInt(-5).ClampNonNegative())
	assert.Equal(t, LengthFromInt(5), LengthFromInt(5).ClampNonNegative())
	assert.Equal(t, LengthFromInt(3), MinLength(LengthFromInt(3), LengthFromInt(7)))
	assert.Equal(t, LengthFromInt(7), MaxLength(LengthFromInt(3), LengthFromInt(7)))
	assert.Equal(t, LengthFromInt(-4), LengthFromInt(4).Neg())
	assert.Equal(t, LengthFromInt(4), LengthFromInt(-4).Abs())
	assert.Equal(t, LengthFromInt(30), LengthFromInt(3).MulInt(10))
}

func TestLengthDecimalConversion(t *testing.T) {
	d := decimal.RequireFromString("10.5")
	l := LengthFromDecimal(d)
	assert.Equal(t, LengthFromFloat64(10.5), l)
	assert.True(t, l.Decimal().Equal(d))
}
