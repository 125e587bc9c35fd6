package entity

import "time"

// LoginAttempt is the failed-login counter for one source address.
type LoginAttempt struct {
	IP          string
	Count       int
	LastAttempt time.Time
}
