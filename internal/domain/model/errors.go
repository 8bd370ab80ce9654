package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
)
