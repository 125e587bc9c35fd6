package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinic-booking/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	calendarKeyPrefix           = "calendar:counts:"
	calendarGenerationKeyPrefix = "calendar:gen:"

	// calendarGenerationTTL must outlive any count query racing an invalidation.
	calendarGenerationTTL = 24 * time.Hour
)

// fillCalendarScript stores counts only if no invalidation happened since the reader
// sampled the generation.
var fillCalendarScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[2]) or '0')
	if current ~= tonumber(ARGV[1]) then
		return 0
	end
	if tonumber(ARGV[3]) > 0 then
		redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	else
		redis.call('SET', KEYS[1], ARGV[2])
	end
	return 1
`)

var invalidateCalendarScript = redis.NewScript(`
	redis.call('DEL', KEYS[1])
	local gen = redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[1])
	return gen
`)

// CalendarCache keeps per-day appointment counts of a doctor's month in Redis.
// It is advisory: every failure is logged and reported as a miss.
//
// Each month carries a generation bumped by every invalidation. A reader samples it on a
// miss and hands it back to Set, so counts read before a booking never land after it.
type CalendarCache struct {
	client  *redis.Client
	ttl     time.Duration
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func NewCalendarCache(client *redis.Client, ttl time.Duration, log *logrus.Logger, m *metrics.Metrics) *CalendarCache {
	return &CalendarCache{
		client:  client,
		ttl:     ttl,
		log:     log,
		metrics: m,
	}
}

// Get returns the cached date -> count map for month (YYYY-MM). On a miss it returns the
// month's current generation for the following Set.
func (c *CalendarCache) Get(ctx context.Context, doctorID int64, month string) (map[string]int64, int64, bool) {
	values, err := c.client.MGet(ctx, calendarKey(doctorID, month), calendarGenerationKey(doctorID, month)).Result()
	if err != nil {
		c.log.Warnf("Failed to read calendar cache for doctor %d month %s: %+v", doctorID, month, err)
		c.metrics.RecordCacheLookup(false)
		return nil, 0, false
	}

	var generation int64
	if raw, ok := values[1].(string); ok {
		if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			c.log.Warnf("Failed to parse calendar generation for doctor %d month %s: %+v", doctorID, month, err)
			generation = -1
		}
	}

	raw, ok := values[0].(string)
	if !ok {
		c.metrics.RecordCacheLookup(false)
		return nil, generation, false
	}

	counts := make(map[string]int64)
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		c.log.Warnf("Failed to decode calendar cache for doctor %d month %s: %+v", doctorID, month, err)
		c.metrics.RecordCacheLookup(false)
		return nil, generation, false
	}

	c.metrics.RecordCacheLookup(true)
	return counts, generation, true
}

// Set stores counts unless the month was invalidated after generation was read.
func (c *CalendarCache) Set(ctx context.Context, doctorID int64, month string, generation int64, counts map[string]int64) {
	raw, err := json.Marshal(counts)
	if err != nil {
		c.log.Warnf("Failed to encode calendar cache: %+v", err)
		return
	}

	keys := []string{calendarKey(doctorID, month), calendarGenerationKey(doctorID, month)}
	stored, err := fillCalendarScript.Run(ctx, c.client, keys, generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warnf("Failed to write calendar cache for doctor %d month %s: %+v", doctorID, month, err)
		return
	}
	if stored == 0 {
		c.log.Debugf("Skipped stale calendar fill for doctor %d month %s", doctorID, month)
	}
}

func (c *CalendarCache) Invalidate(ctx context.Context, doctorID int64, month string) {
	keys := []string{calendarKey(doctorID, month), calendarGenerationKey(doctorID, month)}
	if err := invalidateCalendarScript.Run(ctx, c.client, keys, calendarGenerationTTL.Milliseconds()).Err(); err != nil {
		c.log.Warnf("Failed to invalidate calendar cache for doctor %d month %s: %+v", doctorID, month, err)
	}
}

// InvalidateDoctor drops every cached month of the doctor, including months that are only
// being filled right now.
func (c *CalendarCache) InvalidateDoctor(ctx context.Context, doctorID int64) {
	months := make(map[string]struct{})
	for _, prefix := range []string{calendarKeyPrefix, calendarGenerationKeyPrefix} {
		base := fmt.Sprintf("%s%d:", prefix, doctorID)
		iter := c.client.Scan(ctx, 0, base+"*", 100).Iterator()
		for iter.Next(ctx) {
			months[strings.TrimPrefix(iter.Val(), base)] = struct{}{}
		}
		if err := iter.Err(); err != nil {
			c.log.Warnf("Failed to list calendar cache keys for doctor %d: %+v", doctorID, err)
			return
		}
	}

	for month := range months {
		c.Invalidate(ctx, doctorID, month)
	}
}

func calendarKey(doctorID int64, month string) string {
	return fmt.Sprintf("%s%d:%s", calendarKeyPrefix, doctorID, month)
}

func calendarGenerationKey(doctorID int64, month string) string {
	return fmt.Sprintf("%s%d:%s", calendarGenerationKeyPrefix, doctorID, month)
}
