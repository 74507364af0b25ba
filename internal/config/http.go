package config

const (
	HCType         = "Content-Type"
	HAccept        = "Accept"
	HUserAgent     = "User-Agent"
	HAuthorization = "Authorization"

	CTypeJSON = "application/json"

	UserAgent = "session-editor/1"
)

const (
	AuthModeNone    = "none"
	AuthModeToken   = "token"
	AuthModeEd25519 = "ed25519"
)

const (
	EnvAPIURL     = "SESSION_EDITOR_API_URL"
	EnvToken      = "SESSION_EDITOR_TOKEN"
	EnvPrivateKey = "SESSION_EDITOR_KEY"
	EnvLogLevel   = "SESSION_EDITOR_LOG_LEVEL"
)
