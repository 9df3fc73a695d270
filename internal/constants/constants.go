package constants

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	SessionCookieName   = "project_session"
)

// Date layouts used in API responses
const (
	ProjectDateLayout = "2006.01.02"
	TaskDateLayout    = "2006-01-02"
)

// Limits
const (
	MinPasswordLength   = 8
	MaxSearchResults    = 10
	MaxAIGeneratedTasks = 20
)

// Recent project scopes
const (
	RecentScopeGlobal = "global"
	RecentScopeUser   = "user"
)
