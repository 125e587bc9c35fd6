package repository

import (
	"context"
	"fmt"
	"time"

	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const revokeScanCount = 100

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) domainRepo.SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Store(ctx context.Context, subject, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(subject, tokenID), "valid", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *sessionRepository) Exists(ctx context.Context, subject, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(subject, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, subject, tokenID string) error {
	if err := r.client.Del(ctx, sessionKey(subject, tokenID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// RevokeAll drops every live token of subject.
func (r *sessionRepository) RevokeAll(ctx context.Context, subject string) error {
	iter := r.client.Scan(ctx, 0, sessionKey(subject, "*"), revokeScanCount).Iterator()
	batch := make([]string, 0, revokeScanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == revokeScanCount {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, batch...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func sessionKey(subject, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", subject, tokenID)
}
