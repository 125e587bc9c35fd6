package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale slot mutexes
	slotMutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	slotMutexStaleThreshold = 10 * time.Minute
)

// BookingGuard serializes booking attempts for the same (doctor, date, time) slot inside
// this process, so the read-check-insert sequence of a booking cannot interleave with
// another attempt on the same slot. Different slots never contend.
//
// The unique index on appointments remains the cross-process guarantee.
type BookingGuard struct {
	log *logrus.Logger

	// Per-slot mutex
	slotMu sync.Map // map[string]*mutexWithTimestamp

	cleanupInterval time.Duration
	staleThreshold  time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewBookingGuard starts the background mutex cleanup. Call Stop() during shutdown.
func NewBookingGuard(log *logrus.Logger) *BookingGuard {
	return newBookingGuard(log, slotMutexCleanupInterval, slotMutexStaleThreshold)
}

func newBookingGuard(log *logrus.Logger, cleanupInterval, staleThreshold time.Duration) *BookingGuard {
	g := &BookingGuard{
		log:             log,
		cleanupInterval: cleanupInterval,
		staleThreshold:  staleThreshold,
		stopChan:        make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupMutexMapLoop()

	return g
}

// Stop gracefully shuts down the guard.
// Safe to call multiple times.
func (g *BookingGuard) Stop() {
	if g.stopped.CompareAndSwap(false, true) {
		close(g.stopChan)
		g.wg.Wait()
		g.log.Info("BookingGuard stopped")
	}
}

func SlotKey(doctorID int64, date, slotTime string) string {
	return fmt.Sprintf("%d|%s|%s", doctorID, date, slotTime)
}

// Lock blocks until the caller owns the slot and returns the matching unlock func.
func (g *BookingGuard) Lock(doctorID int64, date, slotTime string) func() {
	key := SlotKey(doctorID, date, slotTime)
	for {
		mt := g.getSlotMutex(key)
		mt.mu.Lock()
		// The cleanup loop may have dropped this mutex between load and lock.
		if current, ok := g.slotMu.Load(key); ok && current == mt {
			mt.lastUsed.Store(time.Now().Unix())
			return mt.mu.Unlock
		}
		mt.mu.Unlock()
	}
}

// size reports how many slot mutexes are tracked.
func (g *BookingGuard) size() int {
	n := 0
	g.slotMu.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// getSlotMutex returns mutex for a specific slot key
func (g *BookingGuard) getSlotMutex(key string) *mutexWithTimestamp {
	mt, _ := g.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (g *BookingGuard) cleanupMutexMapLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(g.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			g.log.Debug("Slot mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			g.cleanupStaleMutexes(time.Now())
		}
	}
}

// cleanupStaleMutexes removes unused mutexes. lastUsed is checked under the lock so a
// concurrent Lock cannot refresh it between the check and the delete.
func (g *BookingGuard) cleanupStaleMutexes(now time.Time) {
	cutoffTime := now.Add(-g.staleThreshold).Unix()
	var cleaned int

	g.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		// TryLock first - if we can't get lock, someone is using it
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				g.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		g.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
}
