package rbac

import "strings"

// Role is the portal-wide role stored on a user row.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleLocalAdmin Role = "localAdmin"
	RoleUser       Role = "user"
)

// ParseRole maps a stored role name to a Role. Unknown names map to RoleUser
// so they never gain privileges.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "localadmin", "local_admin":
		return RoleLocalAdmin
	default:
		return RoleUser
	}
}

// Privileged reports whether the role may run administrative commands.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleLocalAdmin
}

// Principal describes the authenticated actor.
type Principal struct {
	ID   string
	Role Role
}
