package auth

import "fmt"

// Role is the access level a user holds on one team.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is ADMIN or MEMBER.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Permission is the resolved (team, role) pairing for a user.
type Permission struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Role     Role   `json:"role"`
}

func (p Permission) validate() error {
	if p.TeamID == "" {
		return fmt.Errorf("permission has empty teamId")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("permission for team %s has invalid role %q", p.TeamID, p.Role)
	}
	return nil
}
