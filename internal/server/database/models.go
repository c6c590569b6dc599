package database

import "time"

// Role values stored in users.user_type.
const (
	RoleUser   = "user"
	RoleMember = "member"
)

// User is a registered account. The username doubles as the primary key and
// as the durable session identifier.
type User struct {
	Username     string
	PasswordHash string
	UserType     string
	CreatedAt    time.Time
}

// IsMember reports whether the user holds the member role.
func (u *User) IsMember() bool {
	return u.UserType == RoleMember
}

// Message is a single board post. Rows are append-only; the non-member read
// projection leaves Title and Body zero-valued.
type Message struct {
	ID        int64
	Author    string
	Title     string
	Body      string
	Timestamp time.Time
}

// Session maps an opaque session id to its principal's username.
type Session struct {
	SID       string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Stats holds aggregate row counts for the operator CLI.
type Stats struct {
	TotalUsers   int64
	Members      int64
	Messages     int64
	LiveSessions int64
}
