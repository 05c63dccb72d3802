// Package constants defines application-wide constants for timeouts, limits, and durations.
package constants

import "time"

// Call signaling constants
const (
	// RingTimeout is how long an unanswered call rings before it is marked missed
	RingTimeout = 30 * time.Second

	// MaxCallDuration is the maximum allowed call duration (24 hours)
	MaxCallDuration = 24 * time.Hour

	// MaxMessageLength is the maximum allowed in-call message length
	MaxMessageLength = 2000
)

// WebSocket constants
const (
	// WebSocketPingInterval is the interval for WebSocket ping/pong
	WebSocketPingInterval = 60 * time.Second

	// WebSocketWriteTimeout bounds a single outbound websocket write
	WebSocketWriteTimeout = 10 * time.Second

	// WebSocketSendBuffer is the per-connection outbound queue size
	WebSocketSendBuffer = 256
)

// Time-related constants
const (
	// DefaultTimeout is the default timeout for most operations
	DefaultTimeout = 30 * time.Second

	// PersistTimeout bounds a single background transcript write
	PersistTimeout = 5 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful server shutdown
	GracefulShutdownTimeout = 30 * time.Second
)

// Database connection constants
const (
	// MaxConnLifetime is the maximum lifetime of a database connection
	MaxConnLifetime = 1 * time.Hour

	// MaxConnIdleTime is the maximum idle time for a database connection
	MaxConnIdleTime = 30 * time.Minute

	// HealthCheckPeriod is the interval between database health checks
	HealthCheckPeriod = 1 * time.Minute
)

// Presence mirror constants
const (
	// PresenceTTL is how long a mirrored presence key lives without refresh
	PresenceTTL = 5 * time.Minute
)

// Push notification constants
const (
	// PushTokenExpiry is the validity period for push notification tokens
	PushTokenExpiry = 30 * 24 * time.Hour // 30 days
)
