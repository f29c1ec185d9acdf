package auth

import "strings"

// Role is the access level carried in a token. Viewers list templates and
// read assets, operators render statements, admins also upload assets.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// roles is ordered from least to most privileged.
var roles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// NormalizeRole lower-cases and trims value and reports whether it names a
// known role.
func NormalizeRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role.rank() == 0 {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether role grants everything required grants.
// Unknown roles satisfy nothing.
func RoleAtLeast(role Role, required Role) bool {
	rank := role.rank()
	return rank > 0 && rank >= required.rank()
}

func (r Role) rank() int {
	for i, known := range roles {
		if r == known {
			return i + 1
		}
	}
	return 0
}
