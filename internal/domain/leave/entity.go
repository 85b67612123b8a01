package leave

import (
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// LeaveType maps to leave_type_enum in DB
type LeaveType string

const (
	TypeEarned            LeaveType = "earned"
	TypeCasual            LeaveType = "casual"
	TypeMedical           LeaveType = "medical"
	TypeMaternity         LeaveType = "maternity"
	TypePaternity         LeaveType = "paternity"
	TypeStudy             LeaveType = "study"
	TypeExtraWithPay      LeaveType = "extra_with_pay"
	TypeExtraWithoutPay   LeaveType = "extra_without_pay"
	TypeSpecialDisability LeaveType = "special_disability"
	TypeQuarantine        LeaveType = "quarantine"
	TypeSpecial           LeaveType = "special"
)

// LeaveTypes lists every valid leave type
var LeaveTypes = []LeaveType{
	TypeEarned, TypeCasual, TypeMedical, TypeMaternity, TypePaternity,
	TypeStudy, TypeExtraWithPay, TypeExtraWithoutPay, TypeSpecialDisability,
	TypeQuarantine, TypeSpecial,
}

// IsValidLeaveType reports whether t is a known leave type
func IsValidLeaveType(t LeaveType) bool {
	for _, lt := range LeaveTypes {
		if lt == t {
			return true
		}
	}
	return false
}

// LeaveStatus maps to leave_status_enum in DB
type LeaveStatus string

const (
	StatusSubmitted             LeaveStatus = "submitted"
	StatusPending               LeaveStatus = "pending"
	StatusApproved              LeaveStatus = "approved"
	StatusRejected              LeaveStatus = "rejected"
	StatusReturned              LeaveStatus = "returned"
	StatusRecalled              LeaveStatus = "recalled"
	StatusCancellationRequested LeaveStatus = "cancellation_requested"
	StatusCancelled             LeaveStatus = "cancelled"
)

// LeaveRequest entity - the aggregate root of the leave lifecycle.
//
// BalanceDeducted is the authoritative marker that a ledger deduction for
// WorkingDays has been applied and not yet reversed. Every ledger mutation
// flips it in the same transaction; ApprovedAt stays a pure audit timestamp.
type LeaveRequest struct {
	ID          string
	RequesterID string
	Type        LeaveType

	StartDate time.Time // date-only, UTC midnight
	EndDate   time.Time // date-only, UTC midnight

	WorkingDays int
	Reason      string
	Status      LeaveStatus

	CertificateURL        *string
	FitnessCertificateURL *string

	IsModified      bool
	ApprovedAt      *time.Time
	BalanceDeducted bool
	PolicyVersion   int

	// ParentID links an extension request to the approved request it extends
	ParentID *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	RequesterName  *string
	RequesterEmail *string
}

// Ongoing reports whether today falls inside [StartDate, EndDate]
func (lr *LeaveRequest) Ongoing(today time.Time) bool {
	return !today.Before(lr.StartDate) && !today.After(lr.EndDate)
}

// ApprovalDecision maps to approval_decision_enum in DB
type ApprovalDecision string

const (
	DecisionPending   ApprovalDecision = "pending"
	DecisionApproved  ApprovalDecision = "approved"
	DecisionRejected  ApprovalDecision = "rejected"
	DecisionForwarded ApprovalDecision = "forwarded"
)

// Approval entity - one row per approval-chain step taken or pending.
// Deleted en masse when a request is resubmitted: the chain restarts clean.
type Approval struct {
	ID         string
	LeaveID    string
	Step       int
	StepRole   user.Role
	ApproverID *string
	Decision   ApprovalDecision
	ToRole     *user.Role
	Comment    *string
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// Balance entity - per (employee, leave type, year) ledger row.
// Invariant: Available() never goes negative as a result of any lifecycle
// operation; mutations that would violate this fail before any write.
type Balance struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType
	Year       int

	Opening decimal.Decimal
	Accrued decimal.Decimal
	Used    decimal.Decimal
	Closing decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns opening + accrued - used
func (b *Balance) Available() decimal.Decimal {
	return b.Opening.Add(b.Accrued).Sub(b.Used)
}

// LeaveVersion entity - append-only snapshot taken immediately before a
// resubmission mutation. Never updated or deleted.
type LeaveVersion struct {
	ID             string
	LeaveID        string
	Version        int
	Type           LeaveType
	StartDate      time.Time
	EndDate        time.Time
	WorkingDays    int
	Reason         string
	Status         LeaveStatus
	CertificateURL *string
	CreatedAt      time.Time
}

// LeaveComment entity - append-only thread on a request. The most recent
// non-employee comment is the canonical return reason shown to the employee.
type LeaveComment struct {
	ID         string
	LeaveID    string
	AuthorID   string
	AuthorRole user.Role
	Body       string
	CreatedAt  time.Time

	// Relationships (for responses)
	AuthorName *string
}

// Holiday entity - read-only reference set for the policy engine
type Holiday struct {
	ID        string
	Date      time.Time // date-only, UTC midnight
	Name      string
	CreatedAt time.Time
}
