package usecase

import "time"

const (
	// DefaultNotifyTimeout bounds change-feed and event publication after a
	// write has been committed.
	DefaultNotifyTimeout = 5 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultProfileCacheTTL is how long a user profile stays cached.
	DefaultProfileCacheTTL = 10 * time.Minute
)

// Mutation operations reported to the Recorder.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Mutation outcomes reported to the Recorder.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
