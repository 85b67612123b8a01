package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrNoBalanceRecord      = errors.New("no balance record for employee, leave type and year")
	ErrHolidayNotFound      = errors.New("holiday not found")

	ErrNotRequestOwner    = errors.New("only the requester may perform this operation")
	ErrSelfApproval       = errors.New("approvers may not decide their own requests")
	ErrNotCurrentApprover = errors.New("user role does not match the current approval step")

	ErrInvalidStatus    = errors.New("operation not permitted in the request's current status")
	ErrCannotChangeType = errors.New("leave type may not change on resubmission")

	ErrInsufficientBalance    = errors.New("insufficient leave balance")
	ErrExcessiveModification  = errors.New("resubmission increases working days beyond the allowed cap")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrCasualSideTouch        = errors.New("casual leave may not touch a weekend or holiday")
	ErrCertificateRequired    = errors.New("medical certificate required for this leave length")
	ErrFitnessCertRequired    = errors.New("fitness certificate required to return from medical leave")
	ErrInsufficientNotice     = errors.New("insufficient notice before leave start")
	ErrReasonTooShort         = errors.New("reason is shorter than the policy minimum")
	ErrOverlappingLeave       = errors.New("an active leave request already covers part of this range")
	ErrLeaveNotOngoing        = errors.New("leave request is not ongoing")
	ErrInvalidShortenDate     = errors.New("new end date must lie between today and the day before the current end date")
	ErrInvalidExtendDate      = errors.New("new end date must be after the current end date")
	ErrNoFutureDaysToCancel   = errors.New("no future days remain to cancel")
	ErrLeaveAlreadyStarted    = errors.New("leave request has already started")
	ErrNoWorkingDaysInRange   = errors.New("no working days in the requested range")
	ErrHolidayExists          = errors.New("holiday already registered on this date")
	ErrBalanceAlreadyExists   = errors.New("balance record already exists for employee, leave type and year")
)

// IllegalTransitionError carries the offending status pair.
type IllegalTransitionError struct {
	From LeaveStatus
	To   LeaveStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// InsufficientBalanceError carries the available/required context surfaced to
// the caller.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: available %s, required %s",
		e.Available.String(), e.Required.String())
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// ExcessiveModificationError carries the day-count context for the
// resubmission cap.
type ExcessiveModificationError struct {
	OriginalDays  int
	RequestedDays int
	MaxIncrease   int
}

func (e *ExcessiveModificationError) Error() string {
	return fmt.Sprintf("resubmission grows leave from %d to %d working days, max increase is %d",
		e.OriginalDays, e.RequestedDays, e.MaxIncrease)
}

func (e *ExcessiveModificationError) Is(target error) bool {
	return target == ErrExcessiveModification
}
