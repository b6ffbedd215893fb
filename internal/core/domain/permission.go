package domain

// Action is an operation a caller can request against the job subsystem.
type Action string

const (
	ActionCreateJob     Action = "createJob"
	ActionListAllJobs   Action = "listAllJobs"
	ActionListOwnJobs   Action = "listOwnJobs"
	ActionGetJob        Action = "getJob"
	ActionUpdateStatus  Action = "updateStatus"
	ActionDeleteJob     Action = "deleteJob"
	ActionViewJobEvents Action = "viewJobEvents"
)

var permissions = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionCreateJob:     true,
		ActionListAllJobs:   true,
		ActionListOwnJobs:   true,
		ActionGetJob:        true,
		ActionUpdateStatus:  true,
		ActionDeleteJob:     true,
		ActionViewJobEvents: true,
	},
	RoleDispatcher: {
		ActionListOwnJobs:  true,
		ActionGetJob:       true,
		ActionUpdateStatus: true,
	},
}

// Permit reports whether role may perform action. Unknown roles and
// unknown actions are denied.
func Permit(role Role, action Action) bool {
	return permissions[role][action]
}
