package config

const (
	// Config errors
	ErrLoadConfigFmt = "Failed to load config: %v"

	// Auth errors
	ErrCreateAuthorizerFmt = "Failed to create authorizer: %v"
	ErrNotAuthenticated    = "Not authenticated, sign in again to continue editing"

	// Session errors
	ErrOpenSessionFmt = "Failed to open session: %v"
	ErrSubmitFmt      = "Could not save session: %v"
)
