// Package coerce turns raw JSON records into typed column values according
// to a variant descriptor. Coercion never panics: every problem comes back
// as a human readable reason tied to the offending field.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cenergia/mercado/internal/records/domain"
	"github.com/shopspring/decimal"
)

// Record validates and coerces one raw record against desc. It returns the
// typed values and a list of failure reasons; a non-empty reason list means
// the record must not be written.
//
// Required fields fail loudly. Optional measurement fields are lenient:
// nulls, empty strings and sentinel junk such as "---" are stored as NULL
// rather than rejecting the record.
func Record(desc domain.Descriptor, raw map[string]any) (domain.Values, []string) {
	if missing := missingRequired(desc, raw); len(missing) > 0 {
		return nil, []string{fmt.Sprintf("missing required key fields: %s", strings.Join(missing, ", "))}
	}

	values := make(domain.Values, len(desc.Fields))
	var reasons []string

	for _, f := range desc.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				// Present-but-null required fields land here.
				reasons = append(reasons, fmt.Sprintf("field %s is required", f.Name))
				continue
			}
			if f.Default != nil {
				values[f.Name] = f.Default
			} else {
				values[f.Name] = nil
			}
			continue
		}

		coerced, err := coerceValue(f, v)
		if err != nil {
			reasons = append(reasons, err.Error())
			continue
		}
		values[f.Name] = coerced
	}

	if len(reasons) > 0 {
		return nil, reasons
	}
	return values, nil
}

func missingRequired(desc domain.Descriptor, raw map[string]any) []string {
	var missing []string
	for _, f := range desc.Fields {
		if !f.Required {
			continue
		}
		if _, ok := raw[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func coerceValue(f domain.FieldSpec, v any) (any, error) {
	switch f.Kind {
	case domain.KindDate:
		return coerceDate(f, v)
	case domain.KindHour, domain.KindInt:
		return coerceInt(f, v)
	case domain.KindDecimal:
		return coerceDecimal(f, v)
	case domain.KindString:
		return coerceString(f, v)
	default:
		return nil, fmt.Errorf("field %s has unsupported kind", f.Name)
	}
}

func coerceDate(f domain.FieldSpec, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("invalid date for %s: %v", f.Name, v)
	}
	layout := f.DateFormat()
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date for %s: %q (expected %s)", f.Name, s, layoutHint(layout))
	}
	return t, nil
}

func layoutHint(layout string) string {
	hint := strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD").Replace(layout)
	return hint
}

func coerceInt(f domain.FieldSpec, v any) (any, error) {
	n, ok := asInt64(v)
	if !ok {
		if !f.Required {
			// Optional measurements degrade to NULL.
			return nil, nil
		}
		return nil, fmt.Errorf("invalid integer for %s: %v", f.Name, v)
	}
	if f.HasRange && (n < int64(f.Min) || n > int64(f.Max)) {
		return nil, fmt.Errorf("%s out of range: %d (expected %d-%d)", f.Name, n, f.Min, f.Max)
	}
	return n, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceDecimal(f domain.FieldSpec, v any) (any, error) {
	d, ok := asDecimal(v)
	if !ok {
		if !f.Required {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid numeric value for %s: %v", f.Name, v)
	}
	return d, nil
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

func coerceString(f domain.FieldSpec, v any) (any, error) {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		if val == math.Trunc(val) {
			s = strconv.FormatInt(int64(val), 10)
		} else {
			s = strconv.FormatFloat(val, 'f', -1, 64)
		}
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	default:
		return nil, fmt.Errorf("invalid string value for %s: %v", f.Name, v)
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return nil, fmt.Errorf("%s too long: %d characters (max %d)", f.Name, len(s), f.MaxLen)
	}
	return s, nil
}
