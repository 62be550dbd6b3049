package constants

// Session / context keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"

	SessionKeyUserID   = "user_id"
	SessionKeyUserRole = "user_role"
	SessionName        = "taskflow_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// Deadline reminder thresholds, in days before the deadline.
const (
	ReminderUrgentDays   = 1
	ReminderUpcomingDays = 3
)
