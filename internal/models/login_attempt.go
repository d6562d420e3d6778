package models

import "time"

// Column widths of the login_attempts ledger, in characters
const (
	MaxSubjectLength       = 255
	MaxSourceAddressLength = 64
	MaxLocaleLength        = 64
)

// LoginAttempt is one immutable row of the login attempt ledger
type LoginAttempt struct {
	ID                string    `db:"id"`
	Subject           string    `db:"subject"`
	SourceAddress     string    `db:"source_address"`
	Succeeded         bool      `db:"succeeded"`
	AttemptedAt       time.Time `db:"attempt_at"`
	OSLabel           string    `db:"os_label"`
	LocaleLabel       string    `db:"locale_label"`
	UserAgent         string    `db:"user_agent"`
	DeviceFingerprint *string   `db:"device_fingerprint"` // NULL when no platform could be derived
}

// DeviceInfo is the request metadata used for rate limiting and device continuity
type DeviceInfo struct {
	SourceAddress string
	OSLabel       string
	LocaleLabel   string
	UserAgent     string
	Fingerprint   string
}
