package smoke

import "errors"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)

// Result of a single roster request.
const (
	resultAccepted = "accepted"
	resultFull     = "full"
	resultFailed   = "failed"
)

// Sentinel kinds for run failures.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrNoActivity   = errors.New("activity not offered")
	ErrVerification = errors.New("verification failed")
)
