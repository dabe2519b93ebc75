package service

import "errors"

var (
	ErrMissingUserID = errors.New("user id is required")
	ErrNotStarted    = errors.New("service not started")
	ErrInvalidate    = errors.New("invalidate cached result")
)
