package models

// Role is a responsible-party label steps can be assigned to. The allowed
// set is supplied by deployment configuration, not stored per workflow.
type Role struct {
	ID   string `json:"id"   validate:"required"`
	Name string `json:"name" validate:"required"`
}

// DefaultRoles is the fallback registry used when a deployment configures
// none. Templates assign their steps from this list.
var DefaultRoles = []Role{
	{ID: "agent", Name: "Agent"},
	{ID: "supervisor", Name: "Supervisor"},
	{ID: "manager", Name: "Manager"},
}

// FallbackRole returns the role templates assign when the registry is empty.
func FallbackRole(roles []Role) Role {
	if len(roles) == 0 {
		return DefaultRoles[0]
	}

	return roles[0]
}
