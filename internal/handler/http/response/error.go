package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/peoplecore/leave-backend-go/internal/domain/auth"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/notification"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/peoplecore/leave-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var insufficientBalance *leave.InsufficientBalanceError
	if errors.As(err, &insufficientBalance) {
		BadRequest(w, "Insufficient leave balance", map[string]string{
			"available": insufficientBalance.Available.String(),
			"required":  insufficientBalance.Required.String(),
		})
		return
	}

	var excessiveModification *leave.ExcessiveModificationError
	if errors.As(err, &excessiveModification) {
		BadRequest(w, "Resubmission exceeds the allowed day increase", map[string]string{
			"original_days":  fmt.Sprintf("%d", excessiveModification.OriginalDays),
			"requested_days": fmt.Sprintf("%d", excessiveModification.RequestedDays),
			"max_increase":   fmt.Sprintf("%d", excessiveModification.MaxIncrease),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, "Account is inactive")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		Unauthorized(w, "OAuth state mismatch")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrApproverRoleRequired),
		errors.Is(err, user.ErrHRAdminAccessRequired):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrNoBalanceRecord):
		NotFound(w, "No balance record for this employee, leave type and year")
	case errors.Is(err, leave.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Authorization on the request itself
	case errors.Is(err, leave.ErrNotRequestOwner),
		errors.Is(err, leave.ErrSelfApproval),
		errors.Is(err, leave.ErrNotCurrentApprover):
		Forbidden(w, err.Error())

	// Lifecycle conflicts
	case errors.Is(err, leave.ErrInvalidStatus),
		errors.Is(err, leave.ErrIllegalTransition),
		errors.Is(err, leave.ErrCannotChangeType),
		errors.Is(err, leave.ErrLeaveAlreadyStarted),
		errors.Is(err, leave.ErrLeaveNotOngoing),
		errors.Is(err, leave.ErrHolidayExists),
		errors.Is(err, leave.ErrBalanceAlreadyExists),
		errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, err.Error())

	// Policy violations
	case errors.Is(err, leave.ErrCasualSideTouch),
		errors.Is(err, leave.ErrCertificateRequired),
		errors.Is(err, leave.ErrFitnessCertRequired),
		errors.Is(err, leave.ErrInsufficientNotice),
		errors.Is(err, leave.ErrReasonTooShort),
		errors.Is(err, leave.ErrNoWorkingDaysInRange),
		errors.Is(err, leave.ErrInvalidShortenDate),
		errors.Is(err, leave.ErrInvalidExtendDate),
		errors.Is(err, leave.ErrNoFutureDaysToCancel):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
