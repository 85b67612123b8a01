package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/audit"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/notification"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/peoplecore/leave-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
)

// Resubmit replaces a returned request with the corrected draft and restarts
// the approval chain from step one.
//
// The ledger work is the delicate part. A request that was approved in an
// earlier cycle still carries its deduction; the resubmission first reverses
// that in full, then re-checks the new day count against the freed-up balance.
// Reversal, re-check, snapshot, chain reset and the request mutation commit in
// one transaction so a failure at any point leaves the returned request and
// its ledger untouched.
func (s *Service) Resubmit(ctx context.Context, requesterID, leaveID string, req leave.ResubmitRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !s.policy.ValidateReason(req.Reason) {
		return leave.LeaveRequestResponse{}, leave.ErrReasonTooShort
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)
	startDate = NormalizeDate(startDate)
	endDate = NormalizeDate(endDate)

	holidays, err := s.loadHolidaySet(ctx, startDate, endDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	newWorkingDays := s.policy.CountWorkingDays(startDate, endDate, holidays)
	if newWorkingDays == 0 {
		return leave.LeaveRequestResponse{}, leave.ErrNoWorkingDaysInRange
	}

	// The request row is locked first, then its guards run against the
	// committed state. The balance row lock follows, so every lifecycle
	// operation takes the two locks in the same order.
	var lr leave.LeaveRequest
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if lr.RequesterID != requesterID {
			return leave.ErrNotRequestOwner
		}
		if lr.Status != leave.StatusReturned {
			return leave.ErrInvalidStatus
		}
		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusPending); err != nil {
			return err
		}
		if leave.LeaveType(req.Type) != lr.Type {
			return leave.ErrCannotChangeType
		}
		if lr.Type == leave.TypeCasual && s.policy.ViolatesCasualSideTouch(startDate, endDate, holidays) {
			return leave.ErrCasualSideTouch
		}

		daysDifference := newWorkingDays - lr.WorkingDays
		if daysDifference > s.cfg.MaxDayIncrease {
			return &leave.ExcessiveModificationError{
				OriginalDays:  lr.WorkingDays,
				RequestedDays: newWorkingDays,
				MaxIncrease:   s.cfg.MaxDayIncrease,
			}
		}

		certificateURL := lr.CertificateURL
		if req.CertificateURL != nil {
			certificateURL = req.CertificateURL
		}
		if s.policy.CertificateRequired(lr.Type, newWorkingDays) && certificateURL == nil {
			return leave.ErrCertificateRequired
		}

		oldWorkingDays := lr.WorkingDays
		oldYear := lr.StartDate.Year()
		previous := lr

		balance, err := s.balances.GetForUpdate(txCtx, requesterID, lr.Type, startDate.Year())
		if err != nil {
			return err
		}

		// If a prior approval cycle deducted the balance, the freed-up days
		// count toward the new request: only the net growth needs headroom.
		// A prior deduction in a different ledger year offsets nothing here.
		sameYear := oldYear == startDate.Year()
		balanceNeeded := decimal.NewFromInt(int64(newWorkingDays))
		if lr.BalanceDeducted && sameYear {
			balanceNeeded = decimal.NewFromInt(int64(daysDifference))
			if balanceNeeded.IsNegative() {
				balanceNeeded = decimal.Zero
			}
		}
		if balanceNeeded.GreaterThan(balance.Available()) {
			return &leave.InsufficientBalanceError{
				Available: balance.Available(),
				Required:  balanceNeeded,
			}
		}

		if lr.BalanceDeducted {
			oldDays := decimal.NewFromInt(int64(oldWorkingDays))
			if err := s.ledger.Restore(txCtx, requesterID, lr.Type, oldYear, oldDays); err != nil {
				return err
			}
			if _, err := s.audits.Create(txCtx, audit.Entry{
				ActorID:  requesterID,
				Action:   audit.ActionBalanceRestoredResubmit,
				TargetID: lr.ID,
				Details: audit.Details{
					"restored_days": oldWorkingDays,
					"leave_type":    string(lr.Type),
					"year":          oldYear,
				},
			}); err != nil {
				return err
			}
		}

		// Snapshot the request as it stood before this correction
		versionCount, err := s.versions.CountByLeaveID(txCtx, lr.ID)
		if err != nil {
			return err
		}
		if _, err := s.versions.Create(txCtx, leave.LeaveVersion{
			LeaveID:        previous.ID,
			Version:        versionCount + 1,
			Type:           previous.Type,
			StartDate:      previous.StartDate,
			EndDate:        previous.EndDate,
			WorkingDays:    previous.WorkingDays,
			Reason:         previous.Reason,
			Status:         previous.Status,
			CertificateURL: previous.CertificateURL,
		}); err != nil {
			return fmt.Errorf("failed to snapshot leave request: %w", err)
		}

		// Restart the approval chain from step one
		if err := s.approvals.DeleteByLeaveID(txCtx, lr.ID); err != nil {
			return fmt.Errorf("failed to reset approval chain: %w", err)
		}

		lr.StartDate = startDate
		lr.EndDate = endDate
		lr.WorkingDays = newWorkingDays
		lr.Reason = req.Reason
		lr.CertificateURL = certificateURL
		lr.Status = leave.StatusPending
		lr.IsModified = true
		lr.BalanceDeducted = false
		lr.ApprovedAt = nil
		if err := s.requests.Update(txCtx, lr); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		if _, err := s.comments.Create(txCtx, leave.LeaveComment{
			LeaveID:    lr.ID,
			AuthorID:   requesterID,
			AuthorRole: user.RoleEmployee,
			Body:       req.Reason,
		}); err != nil {
			return err
		}

		modified := make([]string, 0, 5)
		if previous.StartDate != startDate {
			modified = append(modified, "start_date")
		}
		if previous.EndDate != endDate {
			modified = append(modified, "end_date")
		}
		if previous.Reason != req.Reason {
			modified = append(modified, "reason")
		}
		if previous.WorkingDays != newWorkingDays {
			modified = append(modified, "working_days")
		}
		if req.CertificateURL != nil {
			modified = append(modified, "certificate_url")
		}

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeaveResubmit,
			TargetID: lr.ID,
			Details: audit.Details{
				"modified_fields":  modified,
				"previous_status":  string(previous.Status),
				"new_status":       string(lr.Status),
				"version":          versionCount + 1,
				"old_working_days": oldWorkingDays,
				"new_working_days": newWorkingDays,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifyRole(ctx, leave.ChainFor(lr.Type)[0], notification.TypeLeaveResubmit,
		"Leave request resubmitted",
		fmt.Sprintf("A corrected %s leave request is back for first-step review", lr.Type),
		map[string]interface{}{"leave_id": lr.ID})

	return s.toResponse(ctx, lr), nil
}
