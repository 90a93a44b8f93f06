package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnsupportedService = fmt.Errorf("unsupported service")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Persistence errors
	ErrMomentNotFound      = fmt.Errorf("moment not found")
	ErrTrackSourceNotFound = fmt.Errorf("track source not found")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrInvalidTimestamp = fmt.Errorf("invalid timestamp")
	ErrInvalidRange     = fmt.Errorf("start time cannot be greater than end time")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidFlag      = fmt.Errorf("invalid flag value")
)
