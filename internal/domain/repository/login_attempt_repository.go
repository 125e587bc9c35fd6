package repository

import (
	"context"
	"time"

	"clinic-booking/internal/domain/entity"
)

// LoginAttemptRepository stores login-attempt counters keyed by source IP.
// Every write refreshes the expiry to window after now.
type LoginAttemptRepository interface {
	// Reserve atomically checks the block and counts the attempt. It reports blocked when
	// limit attempts were already recorded and the last one is within window of now.
	Reserve(ctx context.Context, ip string, now time.Time, window time.Duration, limit int) (*entity.LoginAttempt, bool, error)
	Reset(ctx context.Context, ip string) error
}
