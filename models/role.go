package models

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent       Role = "student"
	RoleTeacher       Role = "teacher"
	RoleAdministrator Role = "administrator"
	RoleParent        Role = "parent"
	RoleExpert        Role = "expert"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdministrator, RoleParent, RoleExpert:
		return true
	}
	return false
}

// Action names a gated operation; authorization checks go through Can
// instead of ad-hoc role string comparisons.
type Action string

const (
	ActionManageUsers  Action = "manage_users"
	ActionClaimDaily   Action = "claim_daily"
	ActionViewChildren Action = "view_children"
)

func Can(role Role, action Action) bool {
	switch action {
	case ActionManageUsers:
		return role == RoleAdministrator
	case ActionClaimDaily:
		// Administrators are never eligible for the daily reward.
		return role != RoleAdministrator
	case ActionViewChildren:
		return role == RoleParent || role == RoleTeacher || role == RoleAdministrator
	}
	return false
}
