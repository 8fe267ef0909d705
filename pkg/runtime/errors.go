// Package runtime provides the database connection and error taxonomy shared
// by the store and analytics packages.
package runtime

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("no database connection")

	// ErrUnknownReport is returned when a report name does not match any
	// registered report.
	ErrUnknownReport = errors.New("unknown report")
)

// ReferentialViolation is returned when an insert references a parent row
// that does not exist. The record is rejected; parents are never auto-created.
type ReferentialViolation struct {
	Table      string
	Constraint string
	Err        error
}

// Error implements the error interface.
func (e *ReferentialViolation) Error() string {
	return fmt.Sprintf("referential violation on %s (%s): %v", e.Table, e.Constraint, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReferentialViolation) Unwrap() error {
	return e.Err
}

// ConstraintViolation is returned when a required field is missing or
// malformed (not-null, check, or invalid value).
type ConstraintViolation struct {
	Table  string
	Column string
	Err    error
}

// Error implements the error interface.
func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation on %s.%s: %v", e.Table, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// MissingReferenceData is returned when a report joins against an entity
// table that holds no rows. An empty join target is surfaced rather than
// silently producing zero result rows.
type MissingReferenceData struct {
	Table string
}

// Error implements the error interface.
func (e *MissingReferenceData) Error() string {
	return fmt.Sprintf("missing reference data: table %s is empty", e.Table)
}

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// SQLSTATE codes used by MapPgError.
const (
	sqlstateNotNull    = "23502"
	sqlstateForeignKey = "23503"
	sqlstateCheck      = "23514"
)

// MapPgError translates a PostgreSQL error into the package taxonomy.
// Foreign key failures become ReferentialViolation, not-null and check
// failures become ConstraintViolation, everything else passes through
// unchanged.
func MapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlstateForeignKey:
		return &ReferentialViolation{
			Table:      pgErr.TableName,
			Constraint: pgErr.ConstraintName,
			Err:        err,
		}
	case sqlstateNotNull, sqlstateCheck:
		return &ConstraintViolation{
			Table:  pgErr.TableName,
			Column: pgErr.ColumnName,
			Err:    err,
		}
	default:
		return err
	}
}
