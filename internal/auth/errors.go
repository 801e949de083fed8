package auth

import "errors"

var (
	// ErrUnauthenticated means there is no usable session.
	ErrUnauthenticated = errors.New("Unauthorized")

	// ErrForbidden matches every *ForbiddenError via errors.Is.
	ErrForbidden = errors.New("Forbidden")

	// ErrInvalidSession is returned by the session boundary when a payload
	// does not decode or fails validation.
	ErrInvalidSession = errors.New("invalid session")
)

// Reasons carried by ForbiddenError.
const (
	ReasonAdminRequired  = "team admin required"
	ReasonMemberRequired = "team membership required"
)

// ForbiddenError is an authorization failure: the caller is known but not
// entitled to act on TeamID.
type ForbiddenError struct {
	TeamID string
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "Forbidden: " + e.Reason
}

// Is makes errors.Is(err, ErrForbidden) true for every reason.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
