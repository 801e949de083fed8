package auth

import "time"

// SessionContext is what handlers get back from RequireAuthenticated.
type SessionContext struct {
	Email       string
	DisplayName string
	Session     *Session
}

// RequireAuthenticated succeeds iff sess is present and not expired.
func RequireAuthenticated(sess *Session) (*SessionContext, error) {
	if !usable(sess) {
		return nil, ErrUnauthenticated
	}
	return &SessionContext{
		Email:       sess.User.Email,
		DisplayName: sess.User.DisplayName(),
		Session:     sess,
	}, nil
}

// AssertTeamAdmin succeeds iff sess holds ADMIN on teamID.
func AssertTeamAdmin(sess *Session, teamID string) error {
	if !usable(sess) {
		return ErrUnauthenticated
	}
	if p, ok := sess.Permission(teamID); ok && p.Role == RoleAdmin {
		return nil
	}
	return &ForbiddenError{TeamID: teamID, Reason: ReasonAdminRequired}
}

// AssertTeamMember succeeds iff sess holds any role on teamID.
func AssertTeamMember(sess *Session, teamID string) error {
	if !usable(sess) {
		return ErrUnauthenticated
	}
	if _, ok := sess.Permission(teamID); ok {
		return nil
	}
	return &ForbiddenError{TeamID: teamID, Reason: ReasonMemberRequired}
}

func usable(sess *Session) bool {
	return sess != nil && !sess.Expired(time.Now())
}
