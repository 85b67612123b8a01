package leave

import (
	"context"
	"fmt"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// BalanceService wraps the ledger rules around the balance repository.
//
// Deduct and Restore must run inside the caller's transaction: GetForUpdate
// locks the (employee, type, year) row until commit, so concurrent mutations
// against the same row serialize at the database and the read-check-write is
// race free. A failed check rolls the whole operation back with no partial
// mutation.
type BalanceService struct {
	balances leave.BalanceRepository
}

func NewBalanceService(balances leave.BalanceRepository) *BalanceService {
	return &BalanceService{balances: balances}
}

// GetAvailable returns the read-only projection for one ledger row
func (s *BalanceService) GetAvailable(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.Balance, error) {
	return s.balances.Get(ctx, employeeID, leaveType, year)
}

// Deduct decrements available balance by days. Fails with
// InsufficientBalanceError before any write when days exceed available.
func (s *BalanceService) Deduct(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int, days decimal.Decimal) error {
	if days.IsNegative() {
		return fmt.Errorf("deduct: negative day count %s", days.String())
	}

	balance, err := s.balances.GetForUpdate(ctx, employeeID, leaveType, year)
	if err != nil {
		return err
	}

	available := balance.Available()
	if days.GreaterThan(available) {
		return &leave.InsufficientBalanceError{Available: available, Required: days}
	}

	return s.balances.ApplyUsedDelta(ctx, balance.ID, days)
}

// Restore is the inverse of Deduct: used goes down, closing goes back up.
// Used when reversing a prior approval (resubmit-after-approval, shorten,
// partial cancel, full cancel before start).
func (s *BalanceService) Restore(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int, days decimal.Decimal) error {
	if days.IsNegative() {
		return fmt.Errorf("restore: negative day count %s", days.String())
	}

	balance, err := s.balances.GetForUpdate(ctx, employeeID, leaveType, year)
	if err != nil {
		return err
	}

	if days.GreaterThan(balance.Used) {
		return fmt.Errorf("restore: %s days exceeds used %s for balance %s",
			days.String(), balance.Used.String(), balance.ID)
	}

	return s.balances.ApplyUsedDelta(ctx, balance.ID, days.Neg())
}
