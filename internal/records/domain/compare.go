package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EqualValue compares a stored value against an incoming coerced value.
// Both sides must already be normalized to the canonical Go type for kind
// (time.Time, int64, decimal.Decimal, string) or nil.
func EqualValue(kind Kind, stored, incoming any) bool {
	if stored == nil || incoming == nil {
		return stored == nil && incoming == nil
	}

	switch kind {
	case KindDate:
		a, ok := stored.(time.Time)
		b, ok2 := incoming.(time.Time)
		return ok && ok2 && SameDay(a, b)
	case KindHour, KindInt:
		a, ok := stored.(int64)
		b, ok2 := incoming.(int64)
		return ok && ok2 && a == b
	case KindDecimal:
		a, ok := stored.(decimal.Decimal)
		b, ok2 := incoming.(decimal.Decimal)
		return ok && ok2 && a.Equal(b)
	case KindString:
		a, ok := stored.(string)
		b, ok2 := incoming.(string)
		return ok && ok2 && a == b
	default:
		return false
	}
}
