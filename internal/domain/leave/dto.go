package leave

import (
	"time"

	"github.com/peoplecore/leave-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLeaveRequest struct {
	Type           string  `json:"leave_type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Reason         string  `json:"reason"`
	CertificateURL *string `json:"certificate_url,omitempty"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !IsValidLeaveType(LeaveType(r.Type)) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is not a known leave type",
		})
	}

	errs = append(errs, validateDateRange(r.StartDate, r.EndDate)...)

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResubmitRequest is the normalized draft an employee sends when correcting a
// returned request. Type must match the original; that is enforced in the
// service, not here, so the failure surfaces as CannotChangeType rather than
// a generic validation error.
type ResubmitRequest struct {
	Type           string  `json:"leave_type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Reason         string  `json:"reason"`
	CertificateURL *string `json:"certificate_url,omitempty"`
}

func (r *ResubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if !IsValidLeaveType(LeaveType(r.Type)) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is not a known leave type",
		})
	}

	errs = append(errs, validateDateRange(r.StartDate, r.EndDate)...)

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideRequest struct {
	Comment *string `json:"comment,omitempty"`
}

type RejectRequest struct {
	Reason  string  `json:"reason"`
	Comment *string `json:"comment,omitempty"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReturnRequest struct {
	Comment string `json:"comment"`
}

func (r *ReturnRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Comment) {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "comment is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ExtendRequest struct {
	NewEndDate string `json:"new_end_date"`
	Reason     string `json:"reason"`
}

func (r *ExtendRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.NewEndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "new_end_date",
			Message: "new_end_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShortenRequest struct {
	NewEndDate string `json:"new_end_date"`
	Reason     string `json:"reason"`
}

func (r *ShortenRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.NewEndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "new_end_date",
			Message: "new_end_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideCancellationRequest struct {
	Approve bool    `json:"approve"`
	Comment *string `json:"comment,omitempty"`
}

type RecallRequest struct {
	FitnessCertificateURL string `json:"fitness_certificate_url"`
	Reason                string `json:"reason"`
}

func (r *RecallRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FitnessCertificateURL) {
		errs = append(errs, validator.ValidationError{
			Field:   "fitness_certificate_url",
			Message: "fitness_certificate_url is required",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AdjustBalanceRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Year       int    `json:"year"`
	Accrued    string `json:"accrued_delta"`
	Note       string `json:"note"`
}

func (r *AdjustBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if !IsValidLeaveType(LeaveType(r.LeaveType)) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is not a known leave type",
		})
	}
	if r.Year <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a positive integer",
		})
	}
	if _, err := decimal.NewFromString(r.Accrued); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "accrued_delta",
			Message: "accrued_delta must be a decimal number of days",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be a valid date (YYYY-MM-DD)",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateDateRange(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, startOK := validator.IsValidDate(start)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}
	endDate, endOK := validator.IsValidDate(end)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}

// Responses

type LeaveRequestResponse struct {
	ID          string `json:"id"`
	RequesterID string `json:"requester_id"`
	Type        string `json:"leave_type"`

	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	WorkingDays int    `json:"working_days"`

	Reason string `json:"reason"`
	Status string `json:"status"`

	CertificateURL        *string `json:"certificate_url,omitempty"`
	FitnessCertificateURL *string `json:"fitness_certificate_url,omitempty"`

	IsModified      bool       `json:"is_modified"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	BalanceDeducted bool       `json:"balance_deducted"`
	PolicyVersion   int        `json:"policy_version"`
	ParentID        *string    `json:"parent_id,omitempty"`

	NextApproverRole *string `json:"next_approver_role,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListRequestsResponse struct {
	Requests []LeaveRequestResponse `json:"requests"`
	Total    int64                  `json:"total"`
}

type BalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Year       int    `json:"year"`
	Opening    string `json:"opening"`
	Accrued    string `json:"accrued"`
	Used       string `json:"used"`
	Available  string `json:"available"`
}

// NewLeaveRequestResponse maps the entity to its response shape
func NewLeaveRequestResponse(lr LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:                    lr.ID,
		RequesterID:           lr.RequesterID,
		Type:                  string(lr.Type),
		StartDate:             lr.StartDate.Format("2006-01-02"),
		EndDate:               lr.EndDate.Format("2006-01-02"),
		WorkingDays:           lr.WorkingDays,
		Reason:                lr.Reason,
		Status:                string(lr.Status),
		CertificateURL:        lr.CertificateURL,
		FitnessCertificateURL: lr.FitnessCertificateURL,
		IsModified:            lr.IsModified,
		ApprovedAt:            lr.ApprovedAt,
		BalanceDeducted:       lr.BalanceDeducted,
		PolicyVersion:         lr.PolicyVersion,
		ParentID:              lr.ParentID,
		CreatedAt:             lr.CreatedAt,
		UpdatedAt:             lr.UpdatedAt,
	}
}

// NewBalanceResponse maps the entity to its response shape
func NewBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		LeaveType:  string(b.LeaveType),
		Year:       b.Year,
		Opening:    b.Opening.String(),
		Accrued:    b.Accrued.String(),
		Used:       b.Used.String(),
		Available:  b.Available().String(),
	}
}
