package domain

import (
	"context"
	"time"
)

// Batch status values reported to clients.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusError          = "error"
)

// ItemError describes why a single record was not written. Index is nil
// for batch level failures such as a rolled back commit.
type ItemError struct {
	Index *int   `json:"index"`
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

// Summary is the accounting block of every batch response. Updated is only
// populated by upsert batches.
type Summary struct {
	TotalReceived    int  `json:"total_records_received"`
	Inserted         int  `json:"inserted"`
	Updated          *int `json:"updated,omitempty"`
	FailedValidation int  `json:"failed_validation"`
	DatabaseErrors   int  `json:"database_errors"`
}

// BatchResult is the outcome of a batch ingestion.
type BatchResult struct {
	Status  string      `json:"status"`
	Summary Summary     `json:"summary"`
	Errors  []ItemError `json:"errors,omitempty"`
}

// UpsertAction says what a single-record upsert did.
type UpsertAction string

const (
	ActionInserted UpsertAction = "inserted"
	ActionUpdated  UpsertAction = "updated"
	ActionNone     UpsertAction = "none"
)

// UpsertResult is the outcome of a single-record upsert.
type UpsertResult struct {
	Action  UpsertAction
	Message string
}

// Service ingests market records according to each variant's write policy.
type Service interface {
	// InsertBatch validates every item, skips the invalid ones and commits
	// the rest atomically.
	InsertBatch(ctx context.Context, token string, items []any) (BatchResult, error)
	// UpsertOne inserts a record, updates its payload when the stored copy
	// differs, or reports ErrNoChanges when it is identical.
	UpsertOne(ctx context.Context, token string, item map[string]any) (UpsertResult, error)
	// UpsertBatch applies UpsertOne semantics per item with one commit.
	UpsertBatch(ctx context.Context, token string, items []any) (BatchResult, error)
	// GuardedInsertBatch refuses the batch when its publication date was
	// already ingested or when any record fails validation.
	GuardedInsertBatch(ctx context.Context, token string, items []any) (BatchResult, error)
	// Exists reports whether any record of an insert-only price variant
	// exists for the date.
	Exists(ctx context.Context, token string, date time.Time) (bool, error)
}
