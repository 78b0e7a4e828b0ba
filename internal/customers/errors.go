package customers

import "errors"

var (
	// ErrIndexNotReady means the source rejected a sorted query because the
	// index backing it does not exist yet or is still building.
	ErrIndexNotReady = errors.New("required index not ready")
	// ErrSourceUnavailable wraps network and server failures of a source.
	ErrSourceUnavailable = errors.New("record source unavailable")
	// ErrMalformedRecord marks a source document that cannot be projected.
	ErrMalformedRecord = errors.New("malformed source record")
	ErrProfileNotFound = errors.New("customer profile not found")
	ErrInvalidStatus   = errors.New("invalid customer status")
)
