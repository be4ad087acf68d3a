package v1

var (
	// common errors
	ErrSuccess             = newError(0, "ok")
	ErrBadRequest          = newError(400, "bad request")
	ErrUnauthorized        = newError(401, "unauthorized")
	ErrNotFound            = newError(404, "not found")
	ErrTooManyRequests     = newError(429, "too many requests")
	ErrInternalServerError = newError(500, "internal server error")

	// registry errors
	ErrInvalidSeqNumber      = newError(3001, "invalid seq number")
	ErrInsufficientResources = newError(3002, "insufficient resources")
	ErrPlacementViolation    = newError(3003, "placement violation")
	ErrRateLimited           = newError(3004, "rate limited")
	ErrRejected              = newError(3005, "rejected")
	ErrAgentNotFound         = newError(3101, "agent not found")
	ErrDeviceNotFound        = newError(3102, "device not found")
	ErrDiskNotFound          = newError(3103, "disk not found")
	ErrPlacementGroupExists  = newError(3104, "placement group already exists")

	// auth errors
	ErrInvalidCredentials = newError(1001, "invalid account or password")
)
