package constants

const (
	// Gin context keys set by middleware.
	Token     = "token"
	UserID    = "user_id"
	UserType  = "user_type"
	RequestID = "request_id"
)

const (
	UserTypeUser  = "user"
	UserTypeAdmin = "admin"
)

const (
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
)
