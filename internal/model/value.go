package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindDecimal
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a typed scalar taken from configuration or from a loan record.
// The zero Value is invalid and equals nothing.
type Value struct {
	kind Kind
	i    int64
	d    decimal.Decimal
	s    string
}

func IntValue(i int64) Value               { return Value{kind: KindInt, i: i} }
func DecimalValue(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }
func StringValue(s string) Value           { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.d, v.kind == KindDecimal
}

func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Number returns the value as a decimal for both numeric kinds.
func (v Value) Number() (decimal.Decimal, bool) {
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i), true
	case KindDecimal:
		return v.d, true
	default:
		return decimal.Zero, false
	}
}

// Equal reports whether both values have the same kind and the same content.
// Decimals compare numerically, so 0.10 equals 0.1, but int 25 never equals
// decimal 25.0.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindDecimal:
		return v.d.Equal(o.d)
	case KindString:
		return v.s == o.s
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return v.d.String()
	case KindString:
		return v.s
	default:
		return "<invalid>"
	}
}

// parseAttempt tries to read raw as one Value kind.
type parseAttempt func(raw string) (Value, bool)

var castOrder = []parseAttempt{parseInt, parseDecimal}

func parseInt(raw string) (Value, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Value{}, false
	}
	return IntValue(i), true
}

func parseDecimal(raw string) (Value, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Value{}, false
	}
	return DecimalValue(d), true
}

// CastNum infers the type of a raw scalar: integer first, then decimal,
// otherwise the original string unchanged.
func CastNum(raw string) Value {
	for _, attempt := range castOrder {
		if v, ok := attempt(raw); ok {
			return v
		}
	}
	return StringValue(raw)
}
