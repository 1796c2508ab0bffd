package domain

// ProjectStatus is the canonical lifecycle status of an infrastructure project.
type ProjectStatus string

const (
	StatusDraft       ProjectStatus = "Draft"
	StatusForApproval ProjectStatus = "For Approval"
	StatusApproved    ProjectStatus = "Approved"
	StatusOngoing     ProjectStatus = "Ongoing"
	StatusDelayed     ProjectStatus = "Delayed"
	StatusOnHold      ProjectStatus = "On-hold"
	StatusCompleted   ProjectStatus = "Completed"
	StatusCancelled   ProjectStatus = "Cancelled"
)

// AllStatuses lists every canonical status in lifecycle order.
var AllStatuses = []ProjectStatus{
	StatusDraft, StatusForApproval, StatusApproved, StatusOngoing,
	StatusDelayed, StatusOnHold, StatusCompleted, StatusCancelled,
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PriorityLevel ranks approved projects for scheduling and funding.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "Low"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityHigh     PriorityLevel = "High"
	PriorityCritical PriorityLevel = "Critical"
)

// ValidPriorityLevels is the closed set of accepted priority values.
var ValidPriorityLevels = map[PriorityLevel]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
}

// Role is an employee's access role. Every employee has exactly one.
type Role string

const (
	RoleEmployee        Role = "employee"
	RoleDepartmentHead  Role = "department_head"
	RoleDepartmentAdmin Role = "department_admin"
	RoleAdmin           Role = "admin"
	RoleSuperAdmin      Role = "super_admin"
)

// ValidRoles is the closed set of accepted role strings.
var ValidRoles = map[Role]bool{
	RoleEmployee: true, RoleDepartmentHead: true, RoleDepartmentAdmin: true,
	RoleAdmin: true, RoleSuperAdmin: true,
}

// DecisionStatus is a department-head verdict on a project.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "Pending"
	DecisionApproved DecisionStatus = "Approved"
	DecisionRejected DecisionStatus = "Rejected"
)

// Decision log entry types. The log is a free-form audit trail; these are
// the tags the workflow writes.
const (
	LogTypeApproved       = "approved"
	LogTypeRejected       = "rejected"
	LogTypePriorityChange = "priority_change"
	LogTypeStatusChange   = "status_change"
)
