package auth

import "errors"

var (
	// ErrUnauthenticated means no valid session accompanied the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the session is valid but the role lacks the
	// required permission. Authorization is fail-closed: unknown actions
	// and unknown permissions also land here.
	ErrForbidden = errors.New("forbidden")

	// ErrCSRFMismatch means a state-mutating request arrived without a
	// valid CSRF token. Checked before authorization, reported with a
	// distinct code (419) so clients can re-fetch the token.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
)
