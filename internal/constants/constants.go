package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	SessionName       = "sprintr_session"
	SessionMaxAge     = 86400 * 7
)

// Workspaces
const (
	InviteCodeLength = 10
)

// Kanban positions. Cards are spaced apart so reorders can slot between
// neighbours without renumbering the whole column.
const (
	MinTaskPosition  = 1000
	MaxTaskPosition  = 100000
	TaskPositionStep = 1000
)

// Notifications
const (
	MaxNotificationPageSize = 50
)
