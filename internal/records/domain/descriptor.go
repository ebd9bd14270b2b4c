package domain

import "time"

// Kind identifies how a raw field is coerced and compared.
type Kind int

const (
	KindDate Kind = iota
	KindHour
	KindInt
	KindDecimal
	KindString
)

// BatchPolicy selects how a batch of records is written.
type BatchPolicy int

const (
	// PolicyInsertOnly validates per record, skips failures and commits the
	// survivors in a single transaction.
	PolicyInsertOnly BatchPolicy = iota
	// PolicyUpsert inserts new rows and updates payload columns when the
	// business key already exists with different data.
	PolicyUpsert
	// PolicyGuarded rejects the whole batch when its publication date is
	// already present or when any record fails validation.
	PolicyGuarded
)

// DateLayout is the wire format for date fields unless a field overrides it.
const DateLayout = "2006-01-02"

// FieldSpec describes a single field of a record variant.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
	// MaxLen bounds string fields; zero means unbounded.
	MaxLen int
	// HasRange enables the inclusive Min..Max check for hour and int fields.
	HasRange bool
	Min, Max int
	// Layout overrides DateLayout for date fields.
	Layout string
	// Default is substituted when an optional field is absent or null.
	Default any
}

// DateFormat returns the layout used to parse this field.
func (f FieldSpec) DateFormat() string {
	if f.Layout != "" {
		return f.Layout
	}
	return DateLayout
}

// Descriptor defines a record variant: its table, fields, identity and
// write policy. All ingestion and validation is driven from descriptors.
type Descriptor struct {
	Token string
	Table string

	Fields []FieldSpec

	// BusinessKey names the fields that identify a logical record.
	BusinessKey []string
	// Payload names the measurement fields compared and updated on upsert.
	Payload []string

	Policy BatchPolicy
	// GuardField is the publication date column checked by PolicyGuarded.
	GuardField string
	// UpdatedAtColumn is touched whenever an upsert modifies a row.
	UpdatedAtColumn string
	// DateField backs date based existence lookups.
	DateField string
}

// Field returns the spec for name.
func (d Descriptor) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Values holds one coerced record keyed by column name. Entries are
// time.Time, int64, decimal.Decimal, string or nil.
type Values map[string]any

// Pick returns the subset of v named by cols.
func (v Values) Pick(cols []string) Values {
	out := make(Values, len(cols))
	for _, c := range cols {
		out[c] = v[c]
	}
	return out
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
