package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	LoginAttemptKeyPrefix = "la:"
	ResetTokenKeyPrefix   = "pr:"

	LoginMaxAttempts        = 3                // consecutive wrong passwords before the account is blocked
	LoginAttemptResetWindow = 10 * time.Minute // idle gap after which the failure streak is forgotten
	LoginAttemptDebounce    = 1 * time.Second  // repeated submissions inside this window do not count
	LoginBlockDuration      = 5 * time.Minute  // initial account block; grows by LoginBlockStep per escalation
	LoginBlockStep          = 5 * time.Minute
	LoginBlockMax           = 30 * time.Minute

	IPMaxFailures   = 5                // failed logins from one IP before the IP is blocked
	IPFailureWindow = 10 * time.Minute // renewing expiry on the per-IP failure counter
	IPBlockDuration = 15 * time.Minute // how long a blocked IP stays blocked

	PresenceWindow    = 60 * time.Second // silence after which a user reads as offline
	HeartbeatInterval = 30 * time.Second // expected client ping cadence
	SessionSendBuffer = 16               // outbound events queued per socket before drops

	AccessTokenExpiration  = 1 * time.Hour
	RefreshTokenExpiration = 7 * 24 * time.Hour
	ResetTokenExpiration   = 15 * time.Minute

	HealthCheckServerAddr = ":3001" // health check server address
)
