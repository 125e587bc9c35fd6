package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const loginAttemptKeyPrefix = "login:attempts:"

// reserveAttemptScript decides and counts in one step. A blocked address only gets its
// window refreshed; an expired block starts a fresh counter.
// Returns {blocked, count}.
var reserveAttemptScript = redis.NewScript(`
	local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
	local last = tonumber(redis.call('HGET', KEYS[1], 'last') or '0')
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	if count >= tonumber(ARGV[3]) then
		if now - last < window then
			redis.call('HSET', KEYS[1], 'last', ARGV[1])
			redis.call('PEXPIRE', KEYS[1], window)
			return {1, count}
		end
		redis.call('DEL', KEYS[1])
	end
	count = redis.call('HINCRBY', KEYS[1], 'count', 1)
	redis.call('HSET', KEYS[1], 'last', ARGV[1])
	redis.call('PEXPIRE', KEYS[1], window)
	return {0, count}
`)

type loginAttemptRepository struct {
	client *redis.Client
}

func NewLoginAttemptRepository(client *redis.Client) domainRepo.LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

func (r *loginAttemptRepository) Reserve(ctx context.Context, ip string, now time.Time, window time.Duration, limit int) (*entity.LoginAttempt, bool, error) {
	if window <= 0 {
		return nil, false, errors.New("window must be positive")
	}
	res, err := reserveAttemptScript.Run(ctx, r.client, []string{r.key(ip)},
		now.UnixMilli(), window.Milliseconds(), limit).Int64Slice()
	if err != nil {
		return nil, false, fmt.Errorf("lua reserve attempt: %w", err)
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("lua reserve attempt: unexpected reply %v", res)
	}
	attempt := &entity.LoginAttempt{IP: ip, Count: int(res[1]), LastAttempt: time.UnixMilli(now.UnixMilli())}
	return attempt, res[0] == 1, nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, ip string) error {
	if err := r.client.Del(ctx, r.key(ip)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *loginAttemptRepository) key(ip string) string {
	return loginAttemptKeyPrefix + ip
}
