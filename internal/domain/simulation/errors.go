package simulation

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrUnknownScenario   = errors.New("unknown scenario")
	ErrInvalidParameters = errors.New("invalid scenario parameters")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
