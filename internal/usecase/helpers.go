package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/schedule"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ClinicSettings carries the booking grid and the clinic's clock.
type ClinicSettings struct {
	Hours    schedule.WorkingHours
	Location *time.Location
	Now      func() time.Time
}

func (s ClinicSettings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s ClinicSettings) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.location())
	}
	return s.Now().In(s.location())
}

// isDuplicateKeyError checks if the error is a unique violation. With TranslateError the
// constraint name is lost, so a translated error matches any constraint.
func isDuplicateKeyError(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	// SQLite reports "UNIQUE constraint failed: <table>.<column>, ..."
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks if the error is a foreign key violation, e.g. a row referencing
// a doctor deleted in the meantime.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// actorFromContext returns the username of the authenticated caller, if any.
func actorFromContext(ctx context.Context) string {
	if p, ok := middleware.GetPrincipalFromContext(ctx); ok {
		return p.Username
	}
	return ""
}
