// Package analytics implements the twenty analytical reports over the
// food-delivery dataset. Every report is read-only, deterministic for a given
// dataset, and safe to run concurrently with any other report. A report whose
// filters match nothing returns an empty (non-nil) slice; a report whose join
// target holds no rows at all fails with MissingReferenceData.
package analytics

import (
	"context"
	"fmt"

	"github.com/marshallshelly/forkline/pkg/runtime"
)

// Fixed analysis parameters carried over from the source dataset. The spend
// and order-count thresholds are deliberate literal cutoffs, not derived
// percentiles.
const (
	// NominalCustomer is the customer examined by TopDishesForCustomer.
	NominalCustomer = "Arjun Mehta"

	// TopDishCount bounds the per-customer dish ranking.
	TopDishCount = 5

	// HighValueSpendThreshold marks a high-value customer (lifetime spend).
	HighValueSpendThreshold = 100000

	// HighFrequencyOrderThreshold marks a frequent customer (order count).
	HighFrequencyOrderThreshold = 750

	// RiderCommission is the rider's share of delivered order totals.
	RiderCommission = 0.08

	// ChurnBaseYear and ChurnTargetYear bound the churn set difference: a
	// churned customer ordered in the base year and not in the target year.
	ChurnBaseYear   = 2023
	ChurnTargetYear = 2024
)

// elapsedMinutesSQL computes minutes between order placement and delivery,
// adding a day when the raw difference is negative (delivery crossed
// midnight). Expects orders aliased o and deliveries aliased d.
const elapsedMinutesSQL = `EXTRACT(EPOCH FROM (d.delivery_time - o.order_time +
	CASE WHEN d.delivery_time < o.order_time THEN INTERVAL '24 hours' ELSE INTERVAL '0 hours' END)) / 60`

// Library runs reports against a dataset handle. The handle is explicit on
// every call path; there is no ambient connection state.
type Library struct {
	db *runtime.DB
}

// New creates a report library over the given connection.
func New(db *runtime.DB) *Library {
	return &Library{db: db}
}

// ensureData verifies that every joined entity table holds at least one row,
// so an empty join target surfaces as MissingReferenceData instead of a
// silently empty result.
func (l *Library) ensureData(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		var present bool
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", table)
		if err := l.db.QueryRow(ctx, query).Scan(&present); err != nil {
			return &runtime.QueryError{Query: query, Err: err}
		}
		if !present {
			return &runtime.MissingReferenceData{Table: table}
		}
	}
	return nil
}
