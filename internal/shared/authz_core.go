package shared

import "strings"

// Employee permissions.
const (
	PermEmployeeView      = "employee.view"
	PermEmployeeViewOwn   = "employee.view_own"
	PermEmployeeCreate    = "employee.create"
	PermEmployeeUpdate    = "employee.update"
	PermEmployeeUpdateOwn = "employee.update_own"
	PermEmployeeDelete    = "employee.delete"
)

// Attendance permissions.
const (
	PermAttendanceView    = "attendance.view"
	PermAttendanceViewOwn = "attendance.view_own"
	PermAttendanceClock   = "attendance.clock"
	PermAttendanceCreate  = "attendance.create"
	PermAttendanceUpdate  = "attendance.update"
)

// Leave permissions.
const (
	PermLeaveView    = "leave.view"
	PermLeaveViewOwn = "leave.view_own"
	PermLeaveRequest = "leave.request"
	PermLeaveApprove = "leave.approve"
)

// Payroll permissions.
const (
	PermPayrollView    = "payroll.view"
	PermPayrollViewOwn = "payroll.view_own"
	PermPayrollCreate  = "payroll.create"
)

// Seeded role names.
const (
	RoleAdmin    = "Admin"
	RoleHR       = "HR"
	RoleEmployee = "Employee"
)

// PermissionDef is one entry of the permission catalog.
type PermissionDef struct {
	Name        string `json:"name"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

var catalog = []PermissionDef{
	{PermEmployeeView, "employee", "View all employees"},
	{PermEmployeeViewOwn, "employee", "View own profile"},
	{PermEmployeeCreate, "employee", "Create employees"},
	{PermEmployeeUpdate, "employee", "Update employees"},
	{PermEmployeeUpdateOwn, "employee", "Update own profile"},
	{PermEmployeeDelete, "employee", "Delete employees"},

	{PermAttendanceView, "attendance", "View all attendance records"},
	{PermAttendanceViewOwn, "attendance", "View own attendance"},
	{PermAttendanceClock, "attendance", "Clock in/out"},
	{PermAttendanceCreate, "attendance", "Create attendance records"},
	{PermAttendanceUpdate, "attendance", "Update attendance records"},

	{PermLeaveView, "leave", "View all leave requests"},
	{PermLeaveViewOwn, "leave", "View own leave requests"},
	{PermLeaveRequest, "leave", "Submit leave requests"},
	{PermLeaveApprove, "leave", "Approve/reject leave requests"},

	{PermPayrollView, "payroll", "View all payroll records"},
	{PermPayrollViewOwn, "payroll", "View own payroll"},
	{PermPayrollCreate, "payroll", "Process payroll"},
}

// PermissionCatalog returns every known permission in declaration order.
func PermissionCatalog() []PermissionDef {
	out := make([]PermissionDef, len(catalog))
	copy(out, catalog)
	return out
}

// PermissionModule returns the module part of a "<module>.<action>" name.
func PermissionModule(name string) string {
	module, _, _ := strings.Cut(name, ".")
	return module
}

// DefaultRoleGrants lists the permissions each seeded role receives.
func DefaultRoleGrants() map[string][]string {
	all := make([]string, 0, len(catalog))
	for _, p := range catalog {
		all = append(all, p.Name)
	}
	return map[string][]string{
		RoleAdmin: all,
		RoleHR: {
			PermEmployeeView, PermEmployeeViewOwn, PermEmployeeCreate, PermEmployeeUpdate, PermEmployeeUpdateOwn,
			PermAttendanceView, PermAttendanceViewOwn, PermAttendanceClock, PermAttendanceCreate, PermAttendanceUpdate,
			PermLeaveView, PermLeaveViewOwn, PermLeaveRequest, PermLeaveApprove,
			PermPayrollViewOwn,
		},
		RoleEmployee: {
			PermEmployeeViewOwn, PermEmployeeUpdateOwn,
			PermAttendanceViewOwn, PermAttendanceClock,
			PermLeaveViewOwn, PermLeaveRequest,
			PermPayrollViewOwn,
		},
	}
}
