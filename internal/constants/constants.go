package constants

// ContextKeyUserID is the session and gin-context key holding the
// authenticated user's id.
const ContextKeyUserID = "user_id"

const MinPasswordLength = 8

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
