package registry

import "errors"

var (
	ErrInvalidSeqNumber      = errors.New("invalid seq number")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrPlacementViolation    = errors.New("placement violation")
	ErrRateLimited           = errors.New("rate limited")
	ErrRejected              = errors.New("rejected")
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrAlreadyExists         = errors.New("already exists")
)
