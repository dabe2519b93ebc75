package simulate

import "errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrVerification     = errors.New("verification failed")
	ErrNoUsers          = errors.New("no users to simulate")
)
