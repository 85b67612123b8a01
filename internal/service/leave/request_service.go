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

// Submit validates the draft against the policy engine, checks balance
// read-only (deduction happens at final approval) and creates the request in
// submitted status.
func (s *Service) Submit(ctx context.Context, requesterID string, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !s.policy.ValidateReason(req.Reason) {
		return leave.LeaveRequestResponse{}, leave.ErrReasonTooShort
	}

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType := leave.LeaveType(req.Type)
	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)
	startDate = NormalizeDate(startDate)
	endDate = NormalizeDate(endDate)
	today := NormalizeDate(time.Now().UTC())

	if !s.policy.ValidateNotice(leaveType, startDate, today) {
		return leave.LeaveRequestResponse{}, leave.ErrInsufficientNotice
	}

	overlapping, err := s.requests.CountOverlapping(ctx, requesterID, startDate, endDate, "")
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	if overlapping > 0 {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingLeave
	}

	holidays, err := s.loadHolidaySet(ctx, startDate, endDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	workingDays := s.policy.CountWorkingDays(startDate, endDate, holidays)
	if workingDays == 0 {
		return leave.LeaveRequestResponse{}, leave.ErrNoWorkingDaysInRange
	}
	if leaveType == leave.TypeCasual && s.policy.ViolatesCasualSideTouch(startDate, endDate, holidays) {
		return leave.LeaveRequestResponse{}, leave.ErrCasualSideTouch
	}
	if s.policy.CertificateRequired(leaveType, workingDays) && req.CertificateURL == nil {
		return leave.LeaveRequestResponse{}, leave.ErrCertificateRequired
	}

	// Read-only balance check; the deduction itself happens on final approval
	balance, err := s.ledger.GetAvailable(ctx, requesterID, leaveType, startDate.Year())
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	required := decimal.NewFromInt(int64(workingDays))
	if required.GreaterThan(balance.Available()) {
		return leave.LeaveRequestResponse{}, &leave.InsufficientBalanceError{
			Available: balance.Available(),
			Required:  required,
		}
	}

	var created leave.LeaveRequest
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		created, err = s.requests.Create(txCtx, leave.LeaveRequest{
			RequesterID:    requesterID,
			Type:           leaveType,
			StartDate:      startDate,
			EndDate:        endDate,
			WorkingDays:    workingDays,
			Reason:         req.Reason,
			Status:         leave.StatusSubmitted,
			CertificateURL: req.CertificateURL,
			PolicyVersion:  currentPolicyVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  requesterID,
			Action:   audit.ActionLeaveSubmit,
			TargetID: created.ID,
			Details: audit.Details{
				"leave_type":   string(leaveType),
				"start_date":   req.StartDate,
				"end_date":     req.EndDate,
				"working_days": workingDays,
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifyRole(ctx, leave.ChainFor(leaveType)[0], notification.TypeLeaveSubmitted,
		"New leave request",
		fmt.Sprintf("%s submitted a %s leave request for %d working days", requester.FullName, leaveType, workingDays),
		map[string]interface{}{"leave_id": created.ID})

	return s.toResponse(ctx, created), nil
}

// Approve records the approver's decision for the current chain step. A
// non-final step forwards to the next role; the final step transitions the
// request to approved and deducts the balance, all in one transaction.
//
// The request row is read with FOR UPDATE inside the transaction and the
// guards run against that locked snapshot. Two racing final approvals of the
// same request therefore serialize on the row lock and the loser fails the
// decidability check instead of deducting a second time.
func (s *Service) Approve(ctx context.Context, approverID, leaveID string, req leave.DecideRequest) (leave.LeaveRequestResponse, error) {
	var (
		lr    leave.LeaveRequest
		chain []user.Role
		step  int
		final bool
	)
	now := time.Now().UTC()

	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}

		var approver user.User
		approver, chain, step, err = s.authorizeDecision(txCtx, approverID, &lr)
		if err != nil {
			return err
		}
		final = step == len(chain)

		approval := leave.Approval{
			LeaveID:    lr.ID,
			Step:       step,
			StepRole:   approver.Role,
			ApproverID: &approverID,
			Comment:    req.Comment,
			DecidedAt:  &now,
		}

		if final {
			if err := leave.ValidateStatusTransition(lr.Status, leave.StatusApproved); err != nil {
				return err
			}
			approval.Decision = leave.DecisionApproved

			days := decimal.NewFromInt(int64(lr.WorkingDays))
			if err := s.ledger.Deduct(txCtx, lr.RequesterID, lr.Type, lr.StartDate.Year(), days); err != nil {
				return err
			}

			lr.Status = leave.StatusApproved
			lr.ApprovedAt = &now
			lr.BalanceDeducted = true
		} else {
			if lr.Status == leave.StatusSubmitted {
				if err := leave.ValidateStatusTransition(lr.Status, leave.StatusPending); err != nil {
					return err
				}
				lr.Status = leave.StatusPending
			}
			approval.Decision = leave.DecisionForwarded
			nextRole := chain[step]
			approval.ToRole = &nextRole
		}

		if _, err := s.approvals.Create(txCtx, approval); err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}
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

		action := audit.ActionLeaveForward
		if final {
			action = audit.ActionLeaveApprove
		}
		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  approverID,
			Action:   action,
			TargetID: lr.ID,
			Details: audit.Details{
				"step":   step,
				"final":  final,
				"status": string(lr.Status),
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if final {
		s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveApproved,
			"Leave request approved",
			fmt.Sprintf("Your %s leave request was approved", lr.Type),
			map[string]interface{}{"leave_id": lr.ID})
	} else {
		s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveForwarded,
			"Leave request forwarded",
			fmt.Sprintf("Your %s leave request moved to the next approval step", lr.Type),
			map[string]interface{}{"leave_id": lr.ID})
		s.notifyRole(ctx, chain[step], notification.TypeLeaveSubmitted,
			"Leave request awaiting review",
			fmt.Sprintf("A %s leave request is waiting for your decision", lr.Type),
			map[string]interface{}{"leave_id": lr.ID})
	}

	return s.toResponse(ctx, lr), nil
}

// Reject transitions the request to rejected. No ledger mutation: deduction
// only ever happens at final approval, and a resubmitted request has already
// had any prior deduction reversed.
func (s *Service) Reject(ctx context.Context, approverID, leaveID string, req leave.RejectRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var lr leave.LeaveRequest
	now := time.Now().UTC()

	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		lr, err = s.requests.GetForUpdate(txCtx, leaveID)
		if err != nil {
			return err
		}

		approver, _, step, err := s.authorizeDecision(txCtx, approverID, &lr)
		if err != nil {
			return err
		}

		previousStatus := lr.Status
		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusRejected); err != nil {
			return err
		}

		if _, err := s.approvals.Create(txCtx, leave.Approval{
			LeaveID:    lr.ID,
			Step:       step,
			StepRole:   approver.Role,
			ApproverID: &approverID,
			Decision:   leave.DecisionRejected,
			Comment:    req.Comment,
			DecidedAt:  &now,
		}); err != nil {
			return fmt.Errorf("failed to record rejection: %w", err)
		}

		lr.Status = leave.StatusRejected
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
			Action:   audit.ActionLeaveReject,
			TargetID: lr.ID,
			Details: audit.Details{
				"step":            step,
				"reason":          req.Reason,
				"previous_status": string(previousStatus),
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveRejected,
		"Leave request rejected",
		fmt.Sprintf("Your %s leave request was rejected: %s", lr.Type, req.Reason),
		map[string]interface{}{"leave_id": lr.ID})

	return s.toResponse(ctx, lr), nil
}

// Return hands the request back to the employee for correction. The comment
// becomes the canonical return reason (most recent non-employee comment).
func (s *Service) Return(ctx context.Context, approverID, leaveID string, req leave.ReturnRequest) (leave.LeaveRequestResponse, error) {
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

		approver, _, step, err := s.authorizeDecision(txCtx, approverID, &lr)
		if err != nil {
			return err
		}

		previousStatus := lr.Status
		if err := leave.ValidateStatusTransition(lr.Status, leave.StatusReturned); err != nil {
			return err
		}

		lr.Status = leave.StatusReturned
		if err := s.requests.Update(txCtx, lr); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		if _, err := s.comments.Create(txCtx, leave.LeaveComment{
			LeaveID:    lr.ID,
			AuthorID:   approverID,
			AuthorRole: approver.Role,
			Body:       req.Comment,
		}); err != nil {
			return err
		}

		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  approverID,
			Action:   audit.ActionLeaveReturn,
			TargetID: lr.ID,
			Details: audit.Details{
				"step":            step,
				"comment":         req.Comment,
				"previous_status": string(previousStatus),
			},
		})
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.notifier.Notify(ctx, lr.RequesterID, notification.TypeLeaveReturned,
		"Leave request returned",
		fmt.Sprintf("Your %s leave request was returned for correction: %s", lr.Type, req.Comment),
		map[string]interface{}{"leave_id": lr.ID})

	return s.toResponse(ctx, lr), nil
}

// authorizeDecision runs the shared guards for approve/reject/return: the
// request must be decidable, the actor must not be the requester, and the
// actor's role must match the current chain step. Callers pass the row they
// locked inside the transaction so the guards see committed state, not a
// snapshot from before a concurrent decision. Returns the approver, the
// chain and the 1-based step number.
func (s *Service) authorizeDecision(ctx context.Context, approverID string, lr *leave.LeaveRequest) (user.User, []user.Role, int, error) {
	if approverID == lr.RequesterID {
		return user.User{}, nil, 0, leave.ErrSelfApproval
	}

	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return user.User{}, nil, 0, err
	}
	if !approver.IsApprover() {
		return user.User{}, nil, 0, user.ErrApproverRoleRequired
	}

	if !leave.IsDecidable(lr.Status) {
		return user.User{}, nil, 0, leave.ErrInvalidStatus
	}

	approvals, err := s.approvals.GetByLeaveID(ctx, lr.ID)
	if err != nil {
		return user.User{}, nil, 0, err
	}

	chain := leave.ChainFor(lr.Type)
	role, ok := leave.NextApprover(chain, approvals)
	if !ok {
		return user.User{}, nil, 0, leave.ErrInvalidStatus
	}
	if role != approver.Role {
		return user.User{}, nil, 0, leave.ErrNotCurrentApprover
	}

	completed := 0
	for _, a := range approvals {
		if a.Decision == leave.DecisionApproved || a.Decision == leave.DecisionForwarded {
			completed++
		}
	}

	return approver, chain, completed + 1, nil
}

// notifyRole fans a notification out to every active holder of a role
func (s *Service) notifyRole(ctx context.Context, role user.Role, t notification.NotificationType, title, message string, data map[string]interface{}) {
	holders, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return
	}
	for _, u := range holders {
		s.notifier.Notify(ctx, u.ID, t, title, message, data)
	}
}
