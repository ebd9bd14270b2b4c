package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	recdomain "github.com/cenergia/mercado/internal/records/domain"
	"github.com/shopspring/decimal"
)

// Stored date columns come back as time.Time from pgx but may surface as
// text from sqlite expressions.
var storedDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-07:00",
}

// NormalizeStored converts a driver-produced column value to the canonical
// Go type for kind so it can be compared against coerced input.
func NormalizeStored(kind recdomain.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch kind {
	case recdomain.KindDate:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			return parseStoredDate(t)
		case []byte:
			return parseStoredDate(string(t))
		}
	case recdomain.KindHour, recdomain.KindInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case float64:
			return int64(n), nil
		case []byte:
			return strconv.ParseInt(string(n), 10, 64)
		case string:
			return strconv.ParseInt(n, 10, 64)
		}
	case recdomain.KindDecimal:
		switch n := v.(type) {
		case float64:
			return decimal.NewFromFloat(n), nil
		case int64:
			return decimal.NewFromInt(n), nil
		case string:
			return decimal.NewFromString(n)
		case []byte:
			return decimal.NewFromString(string(n))
		}
	case recdomain.KindString:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	}
	return nil, fmt.Errorf("cannot normalize stored value %v (%T)", v, v)
}

func parseStoredDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range storedDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse stored date %q", s)
}
