package domain

// Role is the authorization category attached to a profile
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleContentAdmin Role = "content_admin"
	RoleInstructor   Role = "instructor"
	RoleUser         Role = "user"
)

// AllRoles contains all valid roles
var AllRoles = []Role{RoleAdmin, RoleContentAdmin, RoleInstructor, RoleUser}

// IsValid checks if a role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleContentAdmin, RoleInstructor, RoleUser:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// DashboardPath maps a role to its landing route. Total: unknown roles fall
// through to the generic user dashboard.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleContentAdmin:
		return "/content-admin"
	case RoleInstructor:
		return "/instructor"
	default:
		return "/dashboard"
	}
}

// CanManageClasses reports whether the role may create or edit classes.
func (r Role) CanManageClasses() bool {
	return r == RoleAdmin || r == RoleContentAdmin || r == RoleInstructor
}

// CanManageContent reports whether the role may manage video content.
func (r Role) CanManageContent() bool {
	return r == RoleAdmin || r == RoleContentAdmin
}
