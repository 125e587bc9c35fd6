package service

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const (
	// MaxLoginAttempts attempts from one address block further logins.
	MaxLoginAttempts = 5

	// LoginBlockWindow is measured from the most recent attempt.
	LoginBlockWindow = 10 * time.Minute
)

var ErrTooManyAttempts = errors.New("too many login attempts, try again later")

// LoginThrottle rejects logins from an address after repeated failures.
// Redis outages fail open: the attempt is logged and allowed.
type LoginThrottle struct {
	repo repository.LoginAttemptRepository
	log  *logrus.Logger
	now  func() time.Time
}

func NewLoginThrottle(repo repository.LoginAttemptRepository, log *logrus.Logger) *LoginThrottle {
	return &LoginThrottle{repo: repo, log: log, now: time.Now}
}

// WithClock replaces the time source.
func (t *LoginThrottle) WithClock(now func() time.Time) *LoginThrottle {
	t.now = now
	return t
}

// Acquire counts an attempt from ip before its credentials are checked and returns the
// attempt number. Once MaxLoginAttempts are on record it returns ErrTooManyAttempts and
// restarts the window. Callers Reset on success.
func (t *LoginThrottle) Acquire(ctx context.Context, ip string) (int, error) {
	attempt, blocked, err := t.repo.Reserve(ctx, ip, t.now(), LoginBlockWindow, MaxLoginAttempts)
	if err != nil {
		t.log.Warnf("Failed to record login attempt for %s: %+v", ip, err)
		return 0, nil
	}
	if blocked {
		return attempt.Count, ErrTooManyAttempts
	}
	return attempt.Count, nil
}

func (t *LoginThrottle) Reset(ctx context.Context, ip string) {
	if err := t.repo.Reset(ctx, ip); err != nil {
		t.log.Warnf("Failed to reset login attempts for %s: %+v", ip, err)
	}
}
