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

// Every adjustment locks the request row with FOR UPDATE before running its
// guards, so concurrent adjustments of the same leave serialize and the
// second one decides against the state the first one committed. The balance
// row lock, where needed, is always taken after the request row lock.

// Extend creates a linked follow-up request for the days past the current end
// date. The extension runs its own approval chain and its own balance check;
// the original approved request is never mutated.
func (s *Service) Extend(ctx context.Context, requesterID, leaveID string, req leave.ExtendRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	today := NormalizeDate(time.Now().UTC())
	newEnd, _ := time.Parse("2006-01-02", req.NewEndDate)
	newEnd = NormalizeDate(newEnd)

	var lr, created leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if lr.RequesterID != requesterID {
			return leave.ErrNotRequestOwner
		}
		if lr.Status != leave.StatusApproved {
			return leave.ErrInvalidStatus
		}
		if !lr.Ongoing(today) {
			return leave.ErrLeaveNotOngoing
		}
		if !newEnd.After(lr.EndDate) {
			return leave.ErrInvalidExtendDate
		}

		extStart := lr.EndDate.AddDate(0, 0, 1)
		holidays, err := s.loadHolidaySet(txCtx, extStart, newEnd)
		if err != nil {
			return err
		}

		workingDays := s.policy.CountWorkingDays(extStart, newEnd, holidays)
		if workingDays == 0 {
			return leave.ErrNoWorkingDaysInRange
		}

		balance, err := s.ledger.GetAvailable(txCtx, requesterID, lr.Type, extStart.Year())
		if err != nil {
			return err
		}
		required := decimal.NewFromInt(int64(workingDays))
		if required.GreaterThan(balance.Available()) {
			return &leave.InsufficientBalanceError{
				Available: balance.Available(),
				Required:  required,
			}
		}

		created, err = s.requests.Create(txCtx, leave.LeaveRequest{
			RequesterID:    requesterID,
			Type:           lr.Type,
			StartDate:      extStart,
			EndDate:        newEnd,
			WorkingDays:    workingDays,
			Reason:         req.Reason,
			Status:         leave.StatusSubmitted,
			CertificateURL: lr.CertificateURL,
			PolicyVersion:  currentPolicyVersion,
			ParentID:       &lr.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to create extension request: %w", err)
		}

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeaveExtend,
			TargetID: created.ID,
			Details: audit.Details{
				"parent_id":    lr.ID,
				"new_end_date": req.NewEndDate,
				"working_days": workingDays,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifyRole(ctx, leave.ChainFor(lr.Type)[0], notification.TypeLeaveSubmitted,
		"Leave extension requested",
		fmt.Sprintf("An extension of an ongoing %s leave needs review", lr.Type),
		map[string]interface{}{"leave_id": created.ID, "parent_id": lr.ID})

	return s.toResponse(ctx, created), nil
}

// Shorten pulls the end date of an ongoing approved leave back and restores
// the freed working days. The request stays approved.
func (s *Service) Shorten(ctx context.Context, requesterID, leaveID string, req leave.ShortenRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	today := NormalizeDate(time.Now().UTC())
	newEnd, _ := time.Parse("2006-01-02", req.NewEndDate)
	newEnd = NormalizeDate(newEnd)

	var lr leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if lr.RequesterID != requesterID {
			return leave.ErrNotRequestOwner
		}
		if lr.Status != leave.StatusApproved {
			return leave.ErrInvalidStatus
		}
		if !lr.Ongoing(today) {
			return leave.ErrLeaveNotOngoing
		}
		if newEnd.Before(today) || !newEnd.Before(lr.EndDate) {
			return leave.ErrInvalidShortenDate
		}

		holidays, err := s.loadHolidaySet(txCtx, lr.StartDate, lr.EndDate)
		if err != nil {
			return err
		}
		newWorkingDays := s.policy.CountWorkingDays(lr.StartDate, newEnd, holidays)
		freedDays := lr.WorkingDays - newWorkingDays
		previousEnd := lr.EndDate

		if freedDays > 0 && lr.BalanceDeducted {
			if err := s.ledger.Restore(txCtx, requesterID, lr.Type, lr.StartDate.Year(),
				decimal.NewFromInt(int64(freedDays))); err != nil {
				return err
			}
		}

		lr.EndDate = newEnd
		lr.WorkingDays = newWorkingDays
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

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeaveShorten,
			TargetID: lr.ID,
			Details: audit.Details{
				"previous_end_date": previousEnd.Format("2006-01-02"),
				"new_end_date":      req.NewEndDate,
				"restored_days":     freedDays,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return s.toResponse(ctx, lr), nil
}

// PartialCancel ends an ongoing approved leave as of yesterday, restoring the
// unconsumed future days. When no working day has been consumed yet the whole
// request cancels with a full restore instead.
func (s *Service) PartialCancel(ctx context.Context, requesterID, leaveID string, req leave.CancelRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	today := NormalizeDate(time.Now().UTC())
	yesterday := today.AddDate(0, 0, -1)

	var lr leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if lr.RequesterID != requesterID {
			return leave.ErrNotRequestOwner
		}
		if lr.Status != leave.StatusApproved {
			return leave.ErrInvalidStatus
		}
		if !lr.Ongoing(today) {
			return leave.ErrLeaveNotOngoing
		}

		holidays, err := s.loadHolidaySet(txCtx, lr.StartDate, lr.EndDate)
		if err != nil {
			return err
		}

		consumedDays := 0
		if !yesterday.Before(lr.StartDate) {
			consumedDays = s.policy.CountWorkingDays(lr.StartDate, yesterday, holidays)
		}
		restoredDays := lr.WorkingDays - consumedDays
		if restoredDays <= 0 {
			return leave.ErrNoFutureDaysToCancel
		}

		fullCancel := consumedDays == 0
		previousEnd := lr.EndDate

		if lr.BalanceDeducted {
			if err := s.ledger.Restore(txCtx, requesterID, lr.Type, lr.StartDate.Year(),
				decimal.NewFromInt(int64(restoredDays))); err != nil {
				return err
			}
		}

		if fullCancel {
			if err := leave.ValidateStatusTransition(lr.Status, leave.StatusCancelled); err != nil {
				return err
			}
			lr.Status = leave.StatusCancelled
			lr.BalanceDeducted = false
		} else {
			lr.EndDate = yesterday
			lr.WorkingDays = consumedDays
		}
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

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeavePartialCancel,
			TargetID: lr.ID,
			Details: audit.Details{
				"previous_end_date": previousEnd.Format("2006-01-02"),
				"consumed_days":     consumedDays,
				"restored_days":     restoredDays,
				"full_cancel":       fullCancel,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return s.toResponse(ctx, lr), nil
}

// Cancel withdraws a request that has not started. Open requests cancel with
// no ledger work; an approved future request gets its full deduction back. An
// approved request already underway must go through RequestCancellation.
func (s *Service) Cancel(ctx context.Context, requesterID, leaveID string, req leave.CancelRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	today := NormalizeDate(time.Now().UTC())

	var lr leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if lr.RequesterID != requesterID {
			return leave.ErrNotRequestOwner
		}

		switch lr.Status {
		case leave.StatusSubmitted, leave.StatusPending, leave.StatusReturned:
			// fine, no ledger involved
		case leave.StatusApproved:
			if !today.Before(lr.StartDate) {
				return leave.ErrLeaveAlreadyStarted
			}
		default:
			return leave.ErrInvalidStatus
		}

		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusCancelled); err != nil {
			return err
		}

		if lr.BalanceDeducted {
			if err := s.ledger.Restore(txCtx, requesterID, lr.Type, lr.StartDate.Year(),
				decimal.NewFromInt(int64(lr.WorkingDays))); err != nil {
				return err
			}
			lr.BalanceDeducted = false
		}

		lr.Status = leave.StatusCancelled
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

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeaveCancel,
			TargetID: lr.ID,
			Details:  audit.Details{"reason": req.Reason},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return s.toResponse(ctx, lr), nil
}

// RequestCancellation asks an approver to cancel an approved leave that has
// already started. The ledger is untouched until the decision.
func (s *Service) RequestCancellation(ctx context.Context, requesterID, leaveID string, req leave.CancelRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var lr leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if lr.RequesterID != requesterID {
			return leave.ErrNotRequestOwner
		}
		if lr.Status != leave.StatusApproved {
			return leave.ErrInvalidStatus
		}
		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusCancellationRequested); err != nil {
			return err
		}

		lr.Status = leave.StatusCancellationRequested
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

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeaveCancellationReq,
			TargetID: lr.ID,
			Details:  audit.Details{"reason": req.Reason},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifyRole(ctx, leave.ChainFor(lr.Type)[0], notification.TypeLeaveSubmitted,
		"Cancellation requested",
		fmt.Sprintf("An employee asked to cancel an ongoing %s leave", lr.Type),
		map[string]interface{}{"leave_id": lr.ID})

	return s.toResponse(ctx, lr), nil
}

// DecideCancellation resolves a pending cancellation request. Granting it
// cancels the leave and restores the days not yet consumed; declining it puts
// the leave back to approved untouched. Both outcomes record the approver's
// comment and an audit entry in the same transaction.
func (s *Service) DecideCancellation(ctx context.Context, approverID, leaveID string, req leave.DecideCancellationRequest) (leave.LeaveRequestResponse, error) {
	today := NormalizeDate(time.Now().UTC())

	var lr leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}
		if approverID == lr.RequesterID {
			return leave.ErrSelfApproval
		}

		approver, err := s.users.GetByID(txCtx, approverID)
		if err != nil {
			return err
		}
		if !approver.IsApprover() {
			return user.ErrApproverRoleRequired
		}
		if lr.Status != leave.StatusCancellationRequested {
			return leave.ErrInvalidStatus
		}

		if !req.Approve {
			if err := leave.ValidateStatusTransition(lr.Status, leave.StatusApproved); err != nil {
				return err
			}
			lr.Status = leave.StatusApproved
			if err := s.requests.Update(txCtx, lr); err != nil {
				return fmt.Errorf("failed to update leave request: %w", err)
			}

			if req.Comment != nil {
				if _, err := s.comments.Create(txCtx, leave.LeaveComment{
					LeaveID:    lr.ID,
					AuthorID:   approverID,
					AuthorRole: approver.Role,
					Body:       *req.Comment,
				}); err != nil {
					return err
				}
			}

			_, err = s.audits.Create(txCtx, audit.Entry{
				ActorID:  approverID,
				Action:   audit.ActionLeaveCancellationDeny,
				TargetID: lr.ID,
				Details:  audit.Details{"via": "cancellation_request"},
			})
			return err
		}

		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusCancelled); err != nil {
			return err
		}

		restoredDays := 0
		if lr.BalanceDeducted {
			holidays, err := s.loadHolidaySet(txCtx, lr.StartDate, lr.EndDate)
			if err != nil {
				return err
			}
			consumedDays := 0
			yesterday := today.AddDate(0, 0, -1)
			if !yesterday.Before(lr.StartDate) {
				consumedDays = s.policy.CountWorkingDays(lr.StartDate, yesterday, holidays)
				if consumedDays > lr.WorkingDays {
					consumedDays = lr.WorkingDays
				}
			}
			restoredDays = lr.WorkingDays - consumedDays
			if restoredDays > 0 {
				if err := s.ledger.Restore(txCtx, lr.RequesterID, lr.Type, lr.StartDate.Year(),
					decimal.NewFromInt(int64(restoredDays))); err != nil {
					return err
				}
			}
		}

		lr.Status = leave.StatusCancelled
		if err := s.requests.Update(txCtx, lr); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		if req.Comment != nil {
			if _, err := s.comments.Create(txCtx, leave.LeaveComment{
				LeaveID:    lr.ID,
				AuthorID:   approverID,
				AuthorRole: approver.Role,
				Body:       *req.Comment,
			}); err != nil {
				return err
			}
		}

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  approverID,
			Action:   audit.ActionLeaveCancel,
			TargetID: lr.ID,
			Details: audit.Details{
				"via":           "cancellation_request",
				"restored_days": restoredDays,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if req.Approve {
		s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveCancelled,
			"Leave cancelled",
			fmt.Sprintf("Your cancellation of the %s leave was granted", lr.Type),
			map[string]interface{}{"leave_id": lr.ID})
	} else {
		s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveApproved,
			"Cancellation declined",
			fmt.Sprintf("Your cancellation request for the %s leave was declined; the leave stands", lr.Type),
			map[string]interface{}{"leave_id": lr.ID})
	}

	return s.toResponse(ctx, lr), nil
}

// Recall brings an employee back from an approved leave early, at management's
// initiative. A medical leave needs a fitness certificate before the employee
// may resume work. Days not yet consumed go back to the ledger.
func (s *Service) Recall(ctx context.Context, approverID, leaveID string, req leave.RecallRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	today := NormalizeDate(time.Now().UTC())
	yesterday := today.AddDate(0, 0, -1)

	var lr leave.LeaveRequest
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}

		approver, err := s.users.GetByID(txCtx, approverID)
		if err != nil {
			return err
		}
		if !approver.IsApprover() {
			return user.ErrApproverRoleRequired
		}
		if lr.Status != leave.StatusApproved {
			return leave.ErrInvalidStatus
		}
		if lr.Type == leave.TypeMedical && req.FitnessCertificateURL == "" {
			return leave.ErrFitnessCertRequired
		}
		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusRecalled); err != nil {
			return err
		}

		holidays, err := s.loadHolidaySet(txCtx, lr.StartDate, lr.EndDate)
		if err != nil {
			return err
		}

		consumedDays := 0
		if !yesterday.Before(lr.StartDate) {
			consumedDays = s.policy.CountWorkingDays(lr.StartDate, yesterday, holidays)
			if consumedDays > lr.WorkingDays {
				consumedDays = lr.WorkingDays
			}
		}
		restoredDays := lr.WorkingDays - consumedDays

		if restoredDays > 0 && lr.BalanceDeducted {
			if err := s.ledger.Restore(txCtx, lr.RequesterID, lr.Type, lr.StartDate.Year(),
				decimal.NewFromInt(int64(restoredDays))); err != nil {
				return err
			}
		}

		lr.Status = leave.StatusRecalled
		if req.FitnessCertificateURL != "" {
			lr.FitnessCertificateURL = &req.FitnessCertificateURL
		}
		if consumedDays == 0 {
			lr.BalanceDeducted = false
		}
		lr.WorkingDays = consumedDays
		if !yesterday.Before(lr.StartDate) {
			lr.EndDate = yesterday
		}
		if err := s.requests.Update(txCtx, lr); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		if _, err := s.comments.Create(txCtx, leave.LeaveComment{
			LeaveID:    lr.ID,
			AuthorID:   approverID,
			AuthorRole: approver.Role,
			Body:       req.Reason,
		}); err != nil {
			return err
		}

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  approverID,
			Action:   audit.ActionLeaveRecall,
			TargetID: lr.ID,
			Details: audit.Details{
				"reason":        req.Reason,
				"consumed_days": consumedDays,
				"restored_days": restoredDays,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveRecalled,
		"Recalled from leave",
		fmt.Sprintf("You have been recalled from your %s leave: %s", lr.Type, req.Reason),
		map[string]interface{}{"leave_id": lr.ID})

	return s.toResponse(ctx, lr), nil
}
