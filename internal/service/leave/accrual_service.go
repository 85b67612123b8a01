package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// yearlyEntitlements is the opening grant per leave type when a new ledger
// year is provisioned. Types absent here get no automatic grant; HR seeds
// them case by case through AdjustBalance.
var yearlyEntitlements = map[leave.LeaveType]decimal.Decimal{
	leave.TypeEarned:       decimal.NewFromInt(20),
	leave.TypeCasual:       decimal.NewFromInt(10),
	leave.TypeMedical:      decimal.NewFromInt(14),
	leave.TypeMaternity:    decimal.NewFromInt(90),
	leave.TypePaternity:    decimal.NewFromInt(15),
	leave.TypeStudy:        decimal.NewFromInt(10),
	leave.TypeExtraWithPay: decimal.NewFromInt(5),
	leave.TypeQuarantine:   decimal.NewFromInt(21),
	leave.TypeSpecial:      decimal.NewFromInt(5),
}

// ProvisionYearlyBalances creates the missing ledger rows for every active
// employee for the given year. Idempotent: rows that already exist are left
// untouched, so the job can run repeatedly without double-granting.
func (s *Service) ProvisionYearlyBalances(ctx context.Context, year int) error {
	employees, err := s.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	created := 0
	for _, emp := range employees {
		for leaveType, entitlement := range yearlyEntitlements {
			_, err := s.balances.Create(ctx, leave.Balance{
				EmployeeID: emp.ID,
				LeaveType:  leaveType,
				Year:       year,
				Opening:    entitlement,
				Accrued:    decimal.Zero,
				Used:       decimal.Zero,
				Closing:    entitlement,
			})
			if err != nil {
				if errors.Is(err, leave.ErrBalanceAlreadyExists) {
					continue
				}
				return fmt.Errorf("failed to provision balance for %s/%s/%d: %w",
					emp.ID, leaveType, year, err)
			}
			created++
		}
	}

	if created > 0 {
		slog.Info("Provisioned yearly leave balances", "year", year, "rows", created)
	}
	return nil
}
