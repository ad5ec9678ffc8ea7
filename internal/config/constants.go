package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for startup checks
const DBPingTimeout = 5 * time.Second

// Outbound token-exchange request timeout
const ExchangeTimeout = 10 * time.Second

// Deadline for the asynchronous pairing write after /pin has responded
const IssueWriteTimeout = 5 * time.Second

// Deadline for one reaper sweep
const SweepTimeout = 30 * time.Second
