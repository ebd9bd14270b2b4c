package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cenergia/mercado/internal/ingest/domain"
	"github.com/cenergia/mercado/internal/ingest/repository"
	"github.com/cenergia/mercado/internal/observability/metrics"
	"github.com/cenergia/mercado/internal/records/coerce"
	recdomain "github.com/cenergia/mercado/internal/records/domain"
	"github.com/cenergia/mercado/internal/records/registry"
	"github.com/cenergia/mercado/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Params collects the dependencies for the ingestion service.
type Params struct {
	fx.In

	DB      *gorm.DB
	Store   *repository.Store
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

type service struct {
	db      *gorm.DB
	store   *repository.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewService builds the ingestion service.
func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		store:   p.Store,
		metrics: p.Metrics,
		log:     p.Log.Named("ingest.service"),
	}
}

// InsertBatch validates each item independently, skips the invalid ones and
// commits the survivors in a single transaction. A failed commit rolls the
// whole pending set back; the accepted records are reported as database
// errors so the client can resubmit the batch unchanged.
func (s *service) InsertBatch(ctx context.Context, token string, items []any) (domain.BatchResult, error) {
	desc, err := registry.Lookup(token)
	if err != nil {
		return domain.BatchResult{}, err
	}
	if desc.Policy != recdomain.PolicyInsertOnly {
		return domain.BatchResult{}, fmt.Errorf("%w: %q does not support insert-only ingestion", recdomain.ErrUnknownRecordType, token)
	}

	res := domain.BatchResult{Status: domain.StatusSuccess}
	res.Summary.TotalReceived = len(items)
	if len(items) == 0 {
		return res, nil
	}

	pending := make([]recdomain.Values, 0, len(items))
	for i, item := range items {
		vals, itemErr := s.coerceItem(desc, i, item)
		if itemErr != nil {
			res.Summary.FailedValidation++
			res.Errors = append(res.Errors, *itemErr)
			continue
		}
		pending = append(pending, vals)
	}
	if res.Summary.FailedValidation > 0 {
		s.metrics.RecordsRejected.WithLabelValues(desc.Token, "validation").
			Add(float64(res.Summary.FailedValidation))
	}

	if len(pending) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.store.InsertRows(ctx, tx, desc.Table, pending)
		})
		if err != nil {
			s.log.Error("batch commit failed",
				zap.String("record_type", desc.Token),
				zap.Int("pending", len(pending)),
				zap.Error(err),
			)
			res.Status = domain.StatusError
			res.Summary.DatabaseErrors = len(pending)
			res.Errors = append(res.Errors, domain.ItemError{
				Error: commitFailureMessage(err),
			})
			s.metrics.RecordsRejected.WithLabelValues(desc.Token, "database").
				Add(float64(len(pending)))
		} else {
			res.Summary.Inserted = len(pending)
			s.metrics.RecordsWritten.WithLabelValues(desc.Token, "inserted").
				Add(float64(len(pending)))
		}
	}

	if res.Status != domain.StatusError && res.Summary.FailedValidation > 0 {
		res.Status = domain.StatusPartialSuccess
	}

	s.log.Info("batch ingested",
		zap.String("record_type", desc.Token),
		zap.String("status", res.Status),
		zap.Int("received", res.Summary.TotalReceived),
		zap.Int("inserted", res.Summary.Inserted),
		zap.Int("failed_validation", res.Summary.FailedValidation),
		zap.Int("database_errors", res.Summary.DatabaseErrors),
	)
	return res, nil
}

// UpsertOne writes a single record keyed by its business key.
func (s *service) UpsertOne(ctx context.Context, token string, item map[string]any) (domain.UpsertResult, error) {
	desc, err := registry.Lookup(token)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	if desc.Policy != recdomain.PolicyUpsert {
		return domain.UpsertResult{}, fmt.Errorf("%w: %q does not support single-record upsert", recdomain.ErrUnknownRecordType, token)
	}

	vals, reasons := coerce.Record(desc, item)
	if len(reasons) > 0 {
		return domain.UpsertResult{}, &domain.ValidationError{Items: []domain.ItemError{
			{Error: strings.Join(reasons, "; "), Data: item},
		}}
	}

	key := vals.Pick(desc.BusinessKey)
	stored, found, err := s.store.FindByKey(ctx, desc.Table, key)
	if err != nil {
		return domain.UpsertResult{}, err
	}

	if !found {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.store.InsertRows(ctx, tx, desc.Table, []recdomain.Values{vals})
		})
		if err != nil {
			if db.IsDuplicateKeyErr(err) {
				// Raced with a concurrent writer on the same key.
				return domain.UpsertResult{}, domain.ErrDuplicateRecord
			}
			return domain.UpsertResult{}, err
		}
		s.metrics.RecordsWritten.WithLabelValues(desc.Token, "inserted").Inc()
		return domain.UpsertResult{Action: domain.ActionInserted, Message: "record inserted"}, nil
	}

	changed, err := s.changedPayload(desc, stored, vals)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	if len(changed) == 0 {
		return domain.UpsertResult{}, domain.ErrNoChanges
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.store.UpdateByKey(ctx, tx, desc.Table, key, changed, desc.UpdatedAtColumn)
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}
	s.metrics.RecordsWritten.WithLabelValues(desc.Token, "updated").Inc()
	return domain.UpsertResult{Action: domain.ActionUpdated, Message: "record updated"}, nil
}

// UpsertBatch applies per-record upsert semantics with a single commit.
// Records identical to their stored copy are left untouched and counted
// in neither inserted nor updated.
func (s *service) UpsertBatch(ctx context.Context, token string, items []any) (domain.BatchResult, error) {
	desc, err := registry.Lookup(token)
	if err != nil {
		return domain.BatchResult{}, err
	}
	if desc.Policy != recdomain.PolicyUpsert {
		return domain.BatchResult{}, fmt.Errorf("%w: %q does not support batch upsert", recdomain.ErrUnknownRecordType, token)
	}

	updated := 0
	res := domain.BatchResult{Status: domain.StatusSuccess}
	res.Summary.TotalReceived = len(items)
	res.Summary.Updated = &updated
	if len(items) == 0 {
		return res, nil
	}

	var (
		inserts []recdomain.Values
		updates []struct{ key, changed recdomain.Values }
	)
	for i, item := range items {
		vals, itemErr := s.coerceItem(desc, i, item)
		if itemErr != nil {
			res.Summary.FailedValidation++
			res.Errors = append(res.Errors, *itemErr)
			continue
		}

		key := vals.Pick(desc.BusinessKey)
		stored, found, err := s.store.FindByKey(ctx, desc.Table, key)
		if err != nil {
			return domain.BatchResult{}, err
		}
		if !found {
			inserts = append(inserts, vals)
			continue
		}
		changed, err := s.changedPayload(desc, stored, vals)
		if err != nil {
			return domain.BatchResult{}, err
		}
		if len(changed) > 0 {
			updates = append(updates, struct{ key, changed recdomain.Values }{key, changed})
		}
	}
	if res.Summary.FailedValidation > 0 {
		s.metrics.RecordsRejected.WithLabelValues(desc.Token, "validation").
			Add(float64(res.Summary.FailedValidation))
	}

	if len(inserts) > 0 || len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.store.InsertRows(ctx, tx, desc.Table, inserts); err != nil {
				return err
			}
			for _, u := range updates {
				if err := s.store.UpdateByKey(ctx, tx, desc.Table, u.key, u.changed, desc.UpdatedAtColumn); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.log.Error("upsert batch commit failed",
				zap.String("record_type", desc.Token),
				zap.Error(err),
			)
			res.Status = domain.StatusError
			res.Summary.DatabaseErrors = len(inserts) + len(updates)
			res.Errors = append(res.Errors, domain.ItemError{
				Error: commitFailureMessage(err),
			})
			s.metrics.RecordsRejected.WithLabelValues(desc.Token, "database").
				Add(float64(res.Summary.DatabaseErrors))
			return res, nil
		}
		res.Summary.Inserted = len(inserts)
		updated = len(updates)
		s.metrics.RecordsWritten.WithLabelValues(desc.Token, "inserted").Add(float64(len(inserts)))
		s.metrics.RecordsWritten.WithLabelValues(desc.Token, "updated").Add(float64(len(updates)))
	}

	if res.Summary.FailedValidation > 0 {
		res.Status = domain.StatusPartialSuccess
	}
	return res, nil
}

// GuardedInsertBatch refuses the whole batch when its publication date is
// already present or when any record fails validation. Nothing is written
// unless every record is clean.
func (s *service) GuardedInsertBatch(ctx context.Context, token string, items []any) (domain.BatchResult, error) {
	desc, err := registry.Lookup(token)
	if err != nil {
		return domain.BatchResult{}, err
	}
	if desc.Policy != recdomain.PolicyGuarded {
		return domain.BatchResult{}, fmt.Errorf("%w: %q does not support guarded ingestion", recdomain.ErrUnknownRecordType, token)
	}
	if len(items) == 0 {
		return domain.BatchResult{}, domain.ErrEmptyBatch
	}

	guardDate, err := s.batchGuardDate(desc, items[0])
	if err != nil {
		return domain.BatchResult{}, err
	}
	exists, err := s.store.ExistsBy(ctx, desc.Table, desc.GuardField, guardDate)
	if err != nil {
		return domain.BatchResult{}, err
	}
	if exists {
		s.metrics.BatchesRejected.WithLabelValues(desc.Token, "publication_date_exists").Inc()
		return domain.BatchResult{}, &domain.PublicationDateExistsError{Field: desc.GuardField, Date: guardDate}
	}

	pending := make([]recdomain.Values, 0, len(items))
	var itemErrors []domain.ItemError
	for i, item := range items {
		vals, itemErr := s.coerceItem(desc, i, item)
		if itemErr != nil {
			itemErrors = append(itemErrors, *itemErr)
			continue
		}
		pending = append(pending, vals)
	}
	if len(itemErrors) > 0 {
		s.metrics.BatchesRejected.WithLabelValues(desc.Token, "validation").Inc()
		return domain.BatchResult{}, &domain.ValidationError{Items: itemErrors}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.store.InsertRows(ctx, tx, desc.Table, pending)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.metrics.BatchesRejected.WithLabelValues(desc.Token, "duplicate").Inc()
			return domain.BatchResult{}, fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, err)
		}
		s.log.Error("guarded batch commit failed",
			zap.String("record_type", desc.Token),
			zap.Error(err),
		)
		return domain.BatchResult{}, err
	}

	s.metrics.RecordsWritten.WithLabelValues(desc.Token, "inserted").Add(float64(len(pending)))
	res := domain.BatchResult{Status: domain.StatusSuccess}
	res.Summary.TotalReceived = len(items)
	res.Summary.Inserted = len(pending)
	return res, nil
}

// Exists reports whether any record of an insert-only price variant exists
// for date. Other variants are not queryable this way.
func (s *service) Exists(ctx context.Context, token string, date time.Time) (bool, error) {
	desc, err := registry.Lookup(token)
	if err != nil {
		return false, err
	}
	if desc.Policy != recdomain.PolicyInsertOnly || !slices.Contains(recdomain.PriceTables, desc.Table) {
		return false, fmt.Errorf("%w: %q does not support date lookups", recdomain.ErrUnknownRecordType, token)
	}
	return s.store.ExistsBy(ctx, desc.Table, desc.DateField, date)
}

// batchGuardDate extracts the publication date from the first record of a
// guarded batch. The first record speaks for the whole batch.
func (s *service) batchGuardDate(desc recdomain.Descriptor, first any) (time.Time, error) {
	raw, ok := first.(map[string]any)
	if !ok {
		return time.Time{}, &domain.ValidationError{Items: []domain.ItemError{
			{Error: "item is not a JSON object", Data: first},
		}}
	}
	v, present := raw[desc.GuardField]
	if !present || v == nil {
		return time.Time{}, &domain.ValidationError{Items: []domain.ItemError{
			{Error: fmt.Sprintf("%s is missing in the first record", desc.GuardField), Data: raw},
		}}
	}
	field, _ := desc.Field(desc.GuardField)
	s2, ok := v.(string)
	if !ok {
		return time.Time{}, &domain.ValidationError{Items: []domain.ItemError{
			{Error: fmt.Sprintf("invalid date for %s: %v", desc.GuardField, v), Data: raw},
		}}
	}
	t, err := time.ParseInLocation(field.DateFormat(), strings.TrimSpace(s2), time.UTC)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Items: []domain.ItemError{
			{Error: fmt.Sprintf("invalid date for %s: %q", desc.GuardField, s2), Data: raw},
		}}
	}
	return t, nil
}

func (s *service) coerceItem(desc recdomain.Descriptor, index int, item any) (recdomain.Values, *domain.ItemError) {
	i := index
	raw, ok := item.(map[string]any)
	if !ok {
		return nil, &domain.ItemError{Index: &i, Error: "item is not a JSON object", Data: item}
	}
	vals, reasons := coerce.Record(desc, raw)
	if len(reasons) > 0 {
		return nil, &domain.ItemError{Index: &i, Error: strings.Join(reasons, "; "), Data: raw}
	}
	return vals, nil
}

func (s *service) changedPayload(desc recdomain.Descriptor, stored map[string]any, incoming recdomain.Values) (recdomain.Values, error) {
	changed := recdomain.Values{}
	for _, col := range desc.Payload {
		field, _ := desc.Field(col)
		norm, err := repository.NormalizeStored(field.Kind, stored[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		if !recdomain.EqualValue(field.Kind, norm, incoming[col]) {
			changed[col] = incoming[col]
		}
	}
	return changed, nil
}

func commitFailureMessage(err error) string {
	if db.IsDuplicateKeyErr(err) {
		return "database commit failed, batch rolled back: duplicate key"
	}
	return "database commit failed, batch rolled back"
}
