package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/config"
	"github.com/peoplecore/leave-backend-go/internal/domain/audit"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/notification"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
	"github.com/peoplecore/leave-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
)

// currentPolicyVersion tags requests with the ruleset applied at creation
const currentPolicyVersion = 1

// Notifier is the fire-and-forget notification sink. Implementations must
// never fail the calling operation.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, t notification.NotificationType, title, message string, data map[string]interface{})
}

// Service is the lifecycle orchestrator. Every state-changing operation runs
// inside one transaction: ledger mutation, request mutation, approvals,
// version snapshot, comments and the audit entry commit together or not at
// all. Notifications go out after commit, best-effort.
type Service struct {
	db     *database.DB
	cfg    config.LeavePolicyConfig
	policy *PolicyEngine

	requests  leave.LeaveRequestRepository
	balances  leave.BalanceRepository
	ledger    *BalanceService
	approvals leave.ApprovalRepository
	versions  leave.VersionRepository
	comments  leave.CommentRepository
	holidays  leave.HolidayRepository
	audits    audit.Repository
	users     user.UserRepository

	notifier Notifier
}

func NewLeaveService(
	db *database.DB,
	cfg config.LeavePolicyConfig,
	requests leave.LeaveRequestRepository,
	balances leave.BalanceRepository,
	approvals leave.ApprovalRepository,
	versions leave.VersionRepository,
	comments leave.CommentRepository,
	holidays leave.HolidayRepository,
	audits audit.Repository,
	users user.UserRepository,
	notifier Notifier,
) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		policy:    NewPolicyEngine(cfg),
		requests:  requests,
		balances:  balances,
		ledger:    NewBalanceService(balances),
		approvals: approvals,
		versions:  versions,
		comments:  comments,
		holidays:  holidays,
		audits:    audits,
		users:     users,
		notifier:  notifier,
	}
}

// loadHolidaySet loads the holiday calendar around a date range, padded so
// the side-touch rule can look one day past either edge.
func (s *Service) loadHolidaySet(ctx context.Context, start, end time.Time) (HolidaySet, error) {
	rows, err := s.holidays.ListRange(ctx, start.AddDate(0, 0, -7), end.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return NewHolidaySet(rows), nil
}

func (s *Service) toResponse(ctx context.Context, lr leave.LeaveRequest) leave.LeaveRequestResponse {
	resp := leave.NewLeaveRequestResponse(lr)
	if leave.IsDecidable(lr.Status) {
		approvals, err := s.approvals.GetByLeaveID(ctx, lr.ID)
		if err == nil {
			if role, ok := leave.NextApprover(leave.ChainFor(lr.Type), approvals); ok {
				roleStr := string(role)
				resp.NextApproverRole = &roleStr
			}
		}
	}
	return resp
}

// Queries

func (s *Service) GetRequest(ctx context.Context, leaveID string) (leave.LeaveRequestResponse, error) {
	lr, err := s.requests.GetByID(ctx, leaveID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return s.toResponse(ctx, lr), nil
}

func (s *Service) ListMyRequests(ctx context.Context, requesterID string, year int) ([]leave.LeaveRequestResponse, error) {
	rows, err := s.requests.GetByRequester(ctx, requesterID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(rows))
	for _, lr := range rows {
		responses = append(responses, s.toResponse(ctx, lr))
	}
	return responses, nil
}

func (s *Service) ListRequests(ctx context.Context, filter leave.RequestFilter) (leave.ListRequestsResponse, error) {
	rows, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return leave.ListRequestsResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(rows))
	for _, lr := range rows {
		responses = append(responses, s.toResponse(ctx, lr))
	}
	return leave.ListRequestsResponse{Requests: responses, Total: total}, nil
}

// ListPendingForApprover returns the open requests whose current chain step
// matches the approver's role.
func (s *Service) ListPendingForApprover(ctx context.Context, approverID string) ([]leave.LeaveRequestResponse, error) {
	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if !approver.IsApprover() {
		return nil, user.ErrApproverRoleRequired
	}

	open, err := s.requests.ListByStatus(ctx, []leave.LeaveStatus{leave.StatusSubmitted, leave.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list open leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0)
	for _, lr := range open {
		approvals, err := s.approvals.GetByLeaveID(ctx, lr.ID)
		if err != nil {
			return nil, err
		}
		role, ok := leave.NextApprover(leave.ChainFor(lr.Type), approvals)
		if ok && role == approver.Role {
			responses = append(responses, s.toResponse(ctx, lr))
		}
	}
	return responses, nil
}

func (s *Service) GetVersions(ctx context.Context, leaveID string) ([]leave.LeaveVersion, error) {
	if _, err := s.requests.GetByID(ctx, leaveID); err != nil {
		return nil, err
	}
	return s.versions.GetByLeaveID(ctx, leaveID)
}

func (s *Service) GetComments(ctx context.Context, leaveID string) ([]leave.LeaveComment, error) {
	if _, err := s.requests.GetByID(ctx, leaveID); err != nil {
		return nil, err
	}
	return s.comments.GetByLeaveID(ctx, leaveID)
}

// Balances

func (s *Service) GetMyBalances(ctx context.Context, employeeID string, year int) ([]leave.BalanceResponse, error) {
	rows, err := s.balances.GetByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	responses := make([]leave.BalanceResponse, 0, len(rows))
	for _, b := range rows {
		responses = append(responses, leave.NewBalanceResponse(b))
	}
	return responses, nil
}

// AdjustBalance applies an HR accrual adjustment, audited in the same
// transaction.
func (s *Service) AdjustBalance(ctx context.Context, actorID string, req leave.AdjustBalanceRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	if !actor.IsHRAdmin() {
		return leave.BalanceResponse{}, user.ErrHRAdminAccessRequired
	}

	delta, err := decimal.NewFromString(req.Accrued)
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("invalid accrued_delta: %w", err)
	}

	var adjusted leave.Balance
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		balance, err := s.balances.GetForUpdate(txCtx, req.EmployeeID, leave.LeaveType(req.LeaveType), req.Year)
		if err != nil {
			return err
		}

		newAccrued := balance.Accrued.Add(delta)
		if balance.Opening.Add(newAccrued).Sub(balance.Used).IsNegative() {
			return &leave.InsufficientBalanceError{
				Available: balance.Available(),
				Required:  delta.Neg(),
			}
		}

		balance.Accrued = newAccrued
		balance.Closing = balance.Closing.Add(delta)
		if err := s.balances.Update(txCtx, balance); err != nil {
			return err
		}

		if _, err := s.audits.Create(txCtx, audit.Entry{
			ActorID:  actorID,
			Action:   audit.ActionBalanceAdjust,
			TargetID: req.EmployeeID,
			Details: audit.Details{
				"leave_type":    req.LeaveType,
				"year":          req.Year,
				"accrued_delta": delta.String(),
				"note":          req.Note,
			},
		}); err != nil {
			return err
		}

		adjusted = balance
		return nil
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	s.notifier.Notify(ctx, req.EmployeeID, notification.TypeBalanceAdjusted,
		"Leave balance adjusted",
		fmt.Sprintf("Your %s balance for %d was adjusted by %s days", req.LeaveType, req.Year, delta.String()),
		map[string]interface{}{"leave_type": req.LeaveType, "year": req.Year})

	return leave.NewBalanceResponse(adjusted), nil
}

// Holidays

func (s *Service) ListHolidays(ctx context.Context) ([]leave.Holiday, error) {
	return s.holidays.List(ctx)
}

func (s *Service) CreateHoliday(ctx context.Context, actorID string, req leave.CreateHolidayRequest) (leave.Holiday, error) {
	if err := req.Validate(); err != nil {
		return leave.Holiday{}, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return leave.Holiday{}, err
	}
	if !actor.IsHRAdmin() {
		return leave.Holiday{}, user.ErrHRAdminAccessRequired
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	var created leave.Holiday
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		created, err = s.holidays.Create(txCtx, leave.Holiday{Date: date, Name: req.Name})
		if err != nil {
			return err
		}
		_, err = s.audits.Create(txCtx, audit.Entry{
			ActorID:  actorID,
			Action:   audit.ActionHolidayCreate,
			TargetID: created.ID,
			Details:  audit.Details{"date": req.Date, "name": req.Name},
		})
		return err
	})
	if err != nil {
		return leave.Holiday{}, err
	}

	return created, nil
}
