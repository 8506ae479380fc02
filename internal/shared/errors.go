package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// Fatal migration errors. ErrSourceFetch aborts before any destination
	// mutation, ErrDestinationCreate before any track append, and
	// ErrDestinationWrite after the destination playlist already exists.
	ErrSourceFetch       = fmt.Errorf("source playlist fetch failed")
	ErrDestinationCreate = fmt.Errorf("destination playlist creation failed")
	ErrDestinationWrite  = fmt.Errorf("destination playlist write failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
