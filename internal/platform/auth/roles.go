package auth

import "fmt"

// Role is the closed set of staff roles. Authorization decisions consult
// explicit permission tables keyed by Role rather than comparing strings at
// call sites.
type Role string

const (
	RoleSuperadmin   Role = "superadmin"
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

var allRoles = map[Role]bool{
	RoleSuperadmin:   true,
	RoleAdmin:        true,
	RoleDoctor:       true,
	RoleReceptionist: true,
}

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !allRoles[r] {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool { return allRoles[r] }

func (r Role) String() string { return string(r) }
