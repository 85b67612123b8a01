package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Leave Management
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Balance / Holiday Management
	PermissionBalanceViewOwn Permission = "balance.view_own"
	PermissionBalanceManage  Permission = "balance.manage"
	PermissionHolidayManage  Permission = "holiday.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionBalanceViewOwn,
	},
	RoleHRAdmin: {
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionBalanceViewOwn,
		PermissionBalanceManage,
		PermissionHolidayManage,
		PermissionReportsView,
	},
	RoleDeptHead: {
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionBalanceViewOwn,
	},
	RoleHRHead: {
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionBalanceViewOwn,
		PermissionBalanceManage,
		PermissionHolidayManage,
		PermissionReportsView,
	},
}

// HasPermission checks if a role carries a permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
