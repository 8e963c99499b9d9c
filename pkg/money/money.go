package money

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount is rounded to.
const Scale = 2

// DefaultCurrency is used whenever an amount carries no explicit currency.
const DefaultCurrency = "CZK"

// Money is an exact decimal amount with two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero returns 0.00.
func Zero() Money {
	return Money{}
}

// Parse reads a decimal string such as "10.50" and rounds it to two places.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return fromDecimal(d), nil
}

// MustParse is Parse for literals; it panics on malformed input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromInt returns a whole amount.
func FromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(Scale)}
}

// Add returns a + b.
func Add(a, b Money) Money {
	return fromDecimal(a.d.Add(b.d))
}

// Mul returns a × b rounded half away from zero.
func Mul(a, b Money) Money {
	return fromDecimal(a.d.Mul(b.d))
}

// MulTrunc returns a × b with digits past the second decimal place dropped.
func MulTrunc(a, b Money) Money {
	return Money{d: a.d.Mul(b.d).Truncate(Scale)}
}

// Div returns a ÷ b rounded half away from zero, or 0.00 when b is zero.
func Div(a, b Money) Money {
	if b.d.IsZero() {
		return Zero()
	}
	return fromDecimal(a.d.Div(b.d))
}

// Sum adds all amounts starting from 0.00.
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, m := range amounts {
		total = Add(total, m)
	}
	return total
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Add(m, o) }

// MulInt multiplies by a whole quantity.
func (m Money) MulInt(n int) Money {
	return fromDecimal(m.d.Mul(decimal.NewFromInt(int64(n))))
}

// DivInt divides by a whole count; a zero count yields 0.00.
func (m Money) DivInt(n int) Money {
	return Div(m, FromInt(int64(n)))
}

// Cmp compares m and o, returning -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether both amounts are the same at two places.
func (m Money) Equal(o Money) bool { return m.Cmp(o) == 0 }

// IsZero reports whether the amount is 0.00.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Decimal exposes the underlying value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.d.StringFixed(Scale)
}

// MarshalJSON always emits a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Zero()
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner for numeric columns.
func (m *Money) Scan(value any) error {
	if value == nil {
		*m = Zero()
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = fromDecimal(d)
	return nil
}

// Value implements driver.Valuer; amounts are stored as decimal strings.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
