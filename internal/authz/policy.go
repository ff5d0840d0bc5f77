// Package authz is the single decision point for role-based permissions.
// Roles and actions are closed enums so a missing case is visible here,
// not scattered across handlers.
package authz

import (
	"github.com/calentasker/calentasker-api/internal/models"
)

// Action identifies a permission-gated operation on a group or its tasks.
type Action int

const (
	ActionCreateTask Action = iota
	ActionEditTask
	ActionDeleteTask
	ActionEditGroup
	ActionDeleteGroup
	ActionManageMembers
	ActionTransferLeadership
)

// Can reports whether a group role grants an action within that group.
// Comment authorship and personal-task ownership are not role questions and
// are checked by the owning service, not here.
func Can(role models.GroupRole, action Action) bool {
	switch action {
	case ActionCreateTask, ActionEditTask, ActionDeleteTask:
		switch role {
		case models.RoleLeader, models.RoleOperator:
			return true
		case models.RoleModerator, models.RoleReader:
			return false
		}
		return false
	case ActionEditGroup, ActionDeleteGroup, ActionManageMembers, ActionTransferLeadership:
		return role == models.RoleLeader
	}
	return false
}
