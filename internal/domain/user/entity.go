package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee"   // Regular employee
	RoleHRAdmin  Role = "hr_admin"   // First approval step, manages holidays/balances
	RoleDeptHead Role = "dept_head"  // Department head - second approval step
	RoleHRHead   Role = "hr_head"    // HR head - final approval step
)

// Roles lists every valid role
var Roles = []Role{RoleEmployee, RoleHRAdmin, RoleDeptHead, RoleHRHead}

// IsValidRole reports whether r is a known role
func IsValidRole(r Role) bool {
	for _, role := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    *string
	Role            Role
	Department      *string
	OAuthProvider   *string
	OAuthProviderID *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsApprover checks if user holds any approval-chain role
func (u *User) IsApprover() bool {
	return u.Role == RoleHRAdmin || u.Role == RoleDeptHead || u.Role == RoleHRHead
}

// IsHRAdmin checks if user can manage holidays and balances
func (u *User) IsHRAdmin() bool {
	return u.Role == RoleHRAdmin || u.Role == RoleHRHead
}
