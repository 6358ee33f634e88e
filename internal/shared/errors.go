package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrTokenExpired   = fmt.Errorf("access token expired")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// Upstream errors
	ErrUpstream     = fmt.Errorf("upstream request failed")
	ErrScrapeFailed = fmt.Errorf("listing scrape failed")
	ErrSendFailed   = fmt.Errorf("email send failed")

	// Domain errors
	ErrCityNotFound    = fmt.Errorf("city not found")
	ErrProfileNotFound = fmt.Errorf("profile not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
