package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyBatch is returned by guarded ingestion for an empty payload.
var ErrEmptyBatch = errors.New("batch is empty")

// ErrDuplicateRecord is returned when an insert collides with an existing
// business key.
var ErrDuplicateRecord = errors.New("record already exists")

// ErrNoChanges is returned by an upsert whose incoming payload matches the
// stored row exactly.
var ErrNoChanges = errors.New("identical record already exists")

// PublicationDateExistsError rejects a guarded batch whose publication
// date has already been ingested.
type PublicationDateExistsError struct {
	Field string
	Date  time.Time
}

func (e *PublicationDateExistsError) Error() string {
	return fmt.Sprintf("data for %s %s already exists", e.Field, e.Date.Format("2006-01-02"))
}

// ValidationError carries per-record failures for payloads rejected as a
// whole.
type ValidationError struct {
	Items []ItemError
}

func (e *ValidationError) Error() string {
	if len(e.Items) == 1 {
		return e.Items[0].Error
	}
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, it.Error)
	}
	return fmt.Sprintf("%d records failed validation: %s", len(e.Items), strings.Join(parts, "; "))
}
