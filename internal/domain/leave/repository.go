package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveRequestRepository - interface for leave_requests table.
// GetForUpdate must be called inside a transaction; it locks the row so
// concurrent lifecycle decisions against the same request serialize.
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	GetByRequester(ctx context.Context, requesterID string, year int) ([]LeaveRequest, error)
	ListByStatus(ctx context.Context, statuses []LeaveStatus) ([]LeaveRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, int64, error)
	Update(ctx context.Context, request LeaveRequest) error
	CountOverlapping(ctx context.Context, requesterID string, start, end time.Time, excludeID string) (int64, error)
}

// RequestFilter narrows List results
type RequestFilter struct {
	RequesterID *string
	Status      *LeaveStatus
	Type        *LeaveType
	Year        *int
	Limit       int
	Offset      int
}

// BalanceRepository - interface for leave_balances table.
// GetForUpdate must be called inside a transaction; it locks the row so
// concurrent deductions against the same (employee, type, year) serialize.
type BalanceRepository interface {
	Create(ctx context.Context, balance Balance) (Balance, error)
	Get(ctx context.Context, employeeID string, leaveType LeaveType, year int) (Balance, error)
	GetForUpdate(ctx context.Context, employeeID string, leaveType LeaveType, year int) (Balance, error)
	GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Balance, error)
	ApplyUsedDelta(ctx context.Context, id string, delta decimal.Decimal) error
	Update(ctx context.Context, balance Balance) error
}

// ApprovalRepository - interface for leave_approvals table
type ApprovalRepository interface {
	Create(ctx context.Context, approval Approval) (Approval, error)
	GetByLeaveID(ctx context.Context, leaveID string) ([]Approval, error)
	Update(ctx context.Context, approval Approval) error
	DeleteByLeaveID(ctx context.Context, leaveID string) error
}

// VersionRepository - interface for leave_versions table. Append-only.
type VersionRepository interface {
	Create(ctx context.Context, version LeaveVersion) (LeaveVersion, error)
	GetByLeaveID(ctx context.Context, leaveID string) ([]LeaveVersion, error)
	CountByLeaveID(ctx context.Context, leaveID string) (int, error)
}

// CommentRepository - interface for leave_comments table. Append-only.
type CommentRepository interface {
	Create(ctx context.Context, comment LeaveComment) (LeaveComment, error)
	GetByLeaveID(ctx context.Context, leaveID string) ([]LeaveComment, error)
}

// HolidayRepository - interface for holidays table
type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	List(ctx context.Context) ([]Holiday, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
