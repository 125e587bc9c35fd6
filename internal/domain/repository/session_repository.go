package repository

import (
	"context"
	"time"
)

// SessionRepository tracks which issued access tokens are still live.
type SessionRepository interface {
	Store(ctx context.Context, subject, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, subject, tokenID string) (bool, error)
	Revoke(ctx context.Context, subject, tokenID string) error
	RevokeAll(ctx context.Context, subject string) error
}
