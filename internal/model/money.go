package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a currency-agnostic fixed-point amount stored in minor units
// (cents).  All prices and revenue figures use it so that arithmetic stays
// exact.
type Money int64

// Cents builds a Money value from a whole number of minor units.
func Cents(c int64) Money { return Money(c) }

// ParseMoney parses a decimal such as "4500", "4500.5" or "4500.00".  More
// than two fractional digits are rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	var f int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	m := Money(w*100 + f)
	if neg {
		m = -m
	}
	return m, nil
}

// Times multiplies the amount by a whole quantity, e.g. a number of nights.
func (m Money) Times(n int) Money { return m * Money(n) }

// DivRound divides by n rounding half away from zero to the nearest cent.
// Dividing by zero yields zero.
func (m Money) DivRound(n int64) Money {
	if n == 0 {
		return 0
	}
	if n < 0 {
		m, n = -m, -n
	}
	if m < 0 {
		return -((-m)*2 + Money(n)) / Money(2*n)
	}
	return (m*2 + Money(n)) / Money(2*n)
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals (9000.00).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
