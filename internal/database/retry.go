package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"expenso/internal/logger"
)

// InTransaction runs fn inside a database transaction. A serialization
// failure or deadlock is retried once transparently; any second failure is
// surfaced to the caller unchanged so the service layer can map it to a
// generic error without leaking storage detail.
func InTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.Transaction(fn)
	if err != nil && isRetryable(err) {
		logger.Get().Warnw("retrying transaction after conflict", "error", err.Error())
		err = db.Transaction(fn)
	}
	return err
}

// isRetryable reports whether the error is a transaction conflict worth one
// retry: SQLSTATE 40001 (serialization_failure) or 40P01 (deadlock_detected).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
