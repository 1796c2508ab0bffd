package domain

import "time"

// Employee is a portal staff account. Role is authoritative here: sensitive
// operations re-read it from the database rather than trusting session or
// client claims.
type Employee struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a server-side login session. The CSRF token lives with the
// session and is compared in constant time on every mutating request.
type Session struct {
	Token      string
	EmployeeID string
	CSRFToken  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
