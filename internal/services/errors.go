package services

import "errors"

// Error taxonomy shared by the calculators. Handlers map these to HTTP
// statuses with errors.Is; anything unmatched is an internal error.
var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrDataIntegrity marks a chart that exists but whose pillar set is
	// incomplete or unparsable. Distinct from validation so callers can
	// tell bad input from a bad chart.
	ErrDataIntegrity = errors.New("data integrity error")
	// ErrNotFound marks a read for which nothing has been computed yet.
	ErrNotFound = errors.New("not found")
)
