package folioplan

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount represents a monetary value in the single reporting currency.
//
// The currency is carried for formatting only; an Amount with an empty
// currency is "weak" and adopts the other operand's currency in binary
// operations. There is no currency conversion anywhere in the engine.
type Amount struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func A[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Amount {
	return Amount{value: newDecimal(value), cur: currency}
}

// currency returns the amount's full currency, never nil.
func (m Amount) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// Currency returns the amount's currency code.
func (m Amount) Currency() string { return m.cur }

// String formats the amount with its currency symbol and grouping.
func (m Amount) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString is like String with an explicit sign, and "-" for zero.
func (m Amount) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Amount) Equal(n Amount) bool              { return m.value.Equal(n.value) }
func (m Amount) IsZero() bool                     { return m.value.IsZero() }
func (m Amount) IsPositive() bool                 { return m.value.IsPositive() }
func (m Amount) IsNegative() bool                 { return m.value.IsNegative() }
func (m Amount) LessThan(n Amount) bool           { return m.value.LessThan(n.value) }
func (m Amount) GreaterThan(n Amount) bool        { return m.value.GreaterThan(n.value) }
func (m Amount) GreaterThanOrEqual(n Amount) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Amount) Neg() Amount                      { return Amount{value: m.value.Neg(), cur: m.cur} }
func (m Amount) Mul(n Quantity) Amount            { return Amount{value: m.value.Mul(n.value), cur: m.cur} }
func (m Amount) Div(n Quantity) Amount            { return Amount{value: m.value.Div(n.value), cur: m.cur} }

// binary operators.
func (m Amount) Add(n Amount) Amount { return Amount{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Amount) Sub(n Amount) Amount { return Amount{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Amount) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// AsFloat returns the inexact float value, for percentage math only.
func (m Amount) AsFloat() float64 { return m.value.InexactFloat64() }

// Decimal returns the underlying exact decimal value.
func (m Amount) Decimal() decimal.Decimal { return m.value }

// WithCurrency returns a copy of the amount carrying the given currency.
func (m Amount) WithCurrency(currency string) Amount {
	return Amount{value: m.value, cur: currency}
}

// Amounts persist as bare decimal numbers: the reporting currency is a
// deployment-wide setting, not part of the data.
func (m Amount) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

func (m *Amount) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
