package onboarding

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hospital-onboarding/internal/common/apperr"
)

const (
	kindApplication = "APPLICATION"
	kindContract    = "CONTRACT"
)

// NumberAllocator hands out monthly sequence numbers backed by an upsert on
// sequence_counters, so concurrent allocations never collide.
type NumberAllocator struct {
	db *sql.DB
}

func NewNumberAllocator(db *sql.DB) *NumberAllocator {
	return &NumberAllocator{db: db}
}

const allocateQuery = `
	INSERT INTO sequence_counters (kind, period, value)
	VALUES ($1, $2, 1)
	ON CONFLICT (kind, period)
	DO UPDATE SET value = sequence_counters.value + 1
	RETURNING value`

func (a *NumberAllocator) next(ctx context.Context, kind, prefix string, now time.Time) (string, error) {
	period := now.UTC().Format("2006-01")

	var value int64
	if err := a.db.QueryRowContext(ctx, allocateQuery, kind, period).Scan(&value); err != nil {
		return "", apperr.Internal(fmt.Errorf("allocate %s number: %w", kind, err))
	}

	return fmt.Sprintf("%s-%s-%06d", prefix, now.UTC().Format("2006-01"), value), nil
}

// NextApplicationNumber returns the next APP-YYYY-MM-NNNNNN number.
func (a *NumberAllocator) NextApplicationNumber(ctx context.Context, now time.Time) (string, error) {
	return a.next(ctx, kindApplication, "APP", now)
}

// NextContractNumber returns the next CON-YYYY-MM-NNNNNN number.
func (a *NumberAllocator) NextContractNumber(ctx context.Context, now time.Time) (string, error) {
	return a.next(ctx, kindContract, "CON", now)
}
