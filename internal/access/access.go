// Package access evaluates whether the acting member may perform a given
// sync action, based on the member role map from the project config.
package access

type Action string

const (
	ActionPull    Action = "pull"
	ActionPush    Action = "push"
	ActionResolve Action = "resolve"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

type Checker interface {
	CanPerform(action Action) bool
}

type RoleChecker struct {
	role Role
}

// NewRoleChecker resolves the member's role from the config role map.
// Members absent from the map default to editor so a project without a
// configured team is not locked out of its own remote.
func NewRoleChecker(members map[string]string, email string) *RoleChecker {
	role := RoleEditor
	if r, ok := members[email]; ok {
		switch Role(r) {
		case RoleAdmin, RoleEditor, RoleViewer:
			role = Role(r)
		}
	}

	return &RoleChecker{role: role}
}

func (c *RoleChecker) Role() Role {
	return c.role
}

func (c *RoleChecker) CanPerform(action Action) bool {
	switch action {
	case ActionPull:
		return true
	case ActionPush, ActionResolve:
		return c.role == RoleAdmin || c.role == RoleEditor
	default:
		return false
	}
}
