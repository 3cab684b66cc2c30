package leads

import "errors"

var (
	// ErrMissingID is returned when a lead snapshot has no conversation id
	ErrMissingID = errors.New("lead id is required")

	// ErrInvalidQualification is returned when a filter names an unknown tier
	ErrInvalidQualification = errors.New("unknown qualification")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
