package model

import "fmt"

// Role is the declared role of a profile. It is parsed once, at the edge,
// and matched exhaustively where dashboards are chosen.
type Role string

const (
	RolePatient  Role = "patient"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

// ErrUnknownRole is returned by ParseRole for values outside the known set.
type ErrUnknownRole struct {
	Value string
}

func (e *ErrUnknownRole) Error() string {
	return fmt.Sprintf("unknown role %q", e.Value)
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleHospital, RoleAdmin:
		return Role(s), nil
	default:
		return "", &ErrUnknownRole{Value: s}
	}
}

func (r Role) String() string {
	return string(r)
}

// SignUpSelectable reports whether the role can be chosen at sign-up.
func (r Role) SignUpSelectable() bool {
	return r == RolePatient || r == RoleHospital
}
