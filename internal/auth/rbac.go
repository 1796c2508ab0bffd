package auth

import (
	"fmt"

	"github.com/avelardo/infratrack/internal/domain"
)

// Permission is a static permission code. Codes are resolved through the
// permission matrix; an action that resolves to no code, or a code that
// resolves to no roles, is denied (fail-closed).
type Permission string

const (
	PermProjectsRegister Permission = "projects.register"
	PermProjectsDecide   Permission = "projects.decide"
	PermProjectsStatus   Permission = "projects.status"
	PermPrioritySet      Permission = "priority.set"
	PermMonitoringView   Permission = "monitoring.view"
	PermLogsView         Permission = "logs.view"
	PermReportsView      Permission = "reports.view"
	PermProgressSubmit   Permission = "progress.submit"
)

// permissionMatrix maps each permission code to the closed set of roles
// allowed to exercise it. The matrix is static; it is not user-editable.
var permissionMatrix = map[Permission][]domain.Role{
	PermProjectsRegister: {domain.RoleEmployee, domain.RoleAdmin, domain.RoleDepartmentAdmin, domain.RoleSuperAdmin},
	PermProjectsDecide:   {domain.RoleDepartmentHead, domain.RoleDepartmentAdmin, domain.RoleSuperAdmin},
	PermProjectsStatus:   {domain.RoleAdmin, domain.RoleDepartmentAdmin, domain.RoleDepartmentHead, domain.RoleSuperAdmin},
	PermPrioritySet:      {domain.RoleDepartmentHead, domain.RoleDepartmentAdmin, domain.RoleSuperAdmin},
	PermMonitoringView:   {domain.RoleEmployee, domain.RoleDepartmentHead, domain.RoleDepartmentAdmin, domain.RoleAdmin, domain.RoleSuperAdmin},
	PermLogsView:         {domain.RoleDepartmentHead, domain.RoleDepartmentAdmin, domain.RoleSuperAdmin},
	PermReportsView:      {domain.RoleDepartmentHead, domain.RoleDepartmentAdmin, domain.RoleAdmin, domain.RoleSuperAdmin},
	PermProgressSubmit:   {domain.RoleEmployee, domain.RoleAdmin, domain.RoleDepartmentAdmin, domain.RoleSuperAdmin},
}

// actionPermissions maps API action names to the permission code that
// guards them. Unmapped actions are denied.
var actionPermissions = map[string]Permission{
	"register_project":       PermProjectsRegister,
	"change_status":          PermProjectsStatus,
	"load_projects":          PermProjectsDecide,
	"decide_project":         PermProjectsDecide,
	"load_priority_projects": PermPrioritySet,
	"set_project_priority":   PermPrioritySet,
	"load_monitoring":        PermMonitoringView,
	"load_risk_alerts":       PermMonitoringView,
	"load_decision_logs":     PermLogsView,
	"load_reports_summary":   PermReportsView,
	"export_report":          PermReportsView,
	"submit_progress":        PermProgressSubmit,
}

// ActionPermission resolves an API action name to its permission code.
func ActionPermission(action string) (Permission, bool) {
	p, ok := actionPermissions[action]
	return p, ok
}

// Authorize checks the identity's role against the permission matrix.
// Unknown permissions deny; an empty role set denies.
func Authorize(id *Identity, perm Permission) error {
	if id == nil {
		return ErrUnauthenticated
	}
	roles, ok := permissionMatrix[perm]
	if !ok || len(roles) == 0 {
		return fmt.Errorf("permission %q resolves to no roles: %w", perm, ErrForbidden)
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return fmt.Errorf("role %q lacks permission %q: %w", id.Role, perm, ErrForbidden)
}

// AuthorizeAction resolves the action to a permission code and authorizes
// it. Unmapped actions are denied without consulting the matrix.
func AuthorizeAction(id *Identity, action string) error {
	perm, ok := ActionPermission(action)
	if !ok {
		return fmt.Errorf("unmapped action %q: %w", action, ErrForbidden)
	}
	return Authorize(id, perm)
}
