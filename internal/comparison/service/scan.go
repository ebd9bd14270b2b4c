package service

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// opDate scans date columns produced by subqueries and aggregates, where
// the driver may surface either time.Time or text.
type opDate struct {
	t time.Time
}

var opDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-07:00",
}

func (d *opDate) Scan(v any) error {
	switch val := v.(type) {
	case time.Time:
		d.t = val.UTC()
		return nil
	case string:
		return d.parse(val)
	case []byte:
		return d.parse(string(val))
	case nil:
		d.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into date", v)
	}
}

func (d *opDate) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range opDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			d.t = t
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into date", s)
}

func (d opDate) Time() time.Time {
	return d.t
}

func (d opDate) ISO() string {
	return d.t.Format("2006-01-02")
}

func (d opDate) Year() int {
	return d.t.Year()
}

// Value satisfies driver.Valuer so GORM's schema parser assigns the field a
// DataType instead of treating it as a relation.
func (d opDate) Value() (driver.Value, error) {
	return d.t, nil
}

var _ sql.Scanner = (*opDate)(nil)
var _ driver.Valuer = opDate{}
