package model

import "errors"

// Sentinel errors for input validation.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNegativeTimestamp = errors.New("negative timestamp")
	ErrUnknownDomain     = errors.New("unknown domain")
	ErrUnknownFactorKind = errors.New("unknown lifestyle factor kind")
	ErrMissingPayload    = errors.New("missing lifestyle payload")
	ErrUnknownTimeZone   = errors.New("unknown time zone")
	ErrNotFinite         = errors.New("value is not finite")
)
