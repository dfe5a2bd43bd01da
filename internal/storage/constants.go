package db

import "time"

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 5
)

// Database pool default constants. A run writes once at the end, so the pool stays small.
const (
	defaultMaxConns          int32         = 4
	defaultMinConns          int32         = 0
	defaultMaxConnIdleTime   time.Duration = 5 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)

const (
	migrationLockID = 4711

	tableRuns    = "eval_runs"
	tableRecords = "eval_records"

	defaultListLimit = 20
)
