package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// FailureDelay slows down rejected logins so that an unknown identifier and a
// wrong password take about the same time to answer
type FailureDelay struct {
	base   time.Duration
	jitter time.Duration
	sleep  func(time.Duration)
}

// NewFailureDelay creates a FailureDelay waiting base plus up to jitter
func NewFailureDelay(base, jitter time.Duration) *FailureDelay {
	return &FailureDelay{
		base:   base,
		jitter: jitter,
		sleep:  time.Sleep,
	}
}

// SetSleep replaces the sleep function (for testing)
func (d *FailureDelay) SetSleep(sleep func(time.Duration)) {
	d.sleep = sleep
}

// cryptoRandDuration returns a secure random duration in [0, max)
func cryptoRandDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0
	}

	return time.Duration(binary.BigEndian.Uint64(randomBytes) % uint64(max))
}

// Duration returns the next delay to apply
func (d *FailureDelay) Duration() time.Duration {
	if d == nil {
		return 0
	}
	return d.base + cryptoRandDuration(d.jitter)
}

// WaitFrom sleeps until at least the delay has elapsed since start
func (d *FailureDelay) WaitFrom(start time.Time) {
	if d == nil {
		return
	}

	target := d.Duration()
	elapsed := time.Since(start)
	if elapsed < target {
		d.sleep(target - elapsed)
	}
}
