package models

// Role is the closed set of account roles. The zero value is not valid;
// new accounts always start as RoleCliente.
type Role string

const (
	RoleCliente   Role = "cliente"
	RoleAdmin     Role = "admin"
	RoleDirector  Role = "director"
	RoleActor     Role = "actor"
	RoleSuperuser Role = "superuser"
)

var AllRoles = []Role{RoleCliente, RoleAdmin, RoleDirector, RoleActor, RoleSuperuser}

// ParseRole maps a request string onto the closed role set.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// OneOf reports whether the role is a member of the given set. All
// authorization decisions go through this single check.
func (r Role) OneOf(set ...Role) bool {
	for _, allowed := range set {
		if r == allowed {
			return true
		}
	}
	return false
}
