package leave

import (
	"context"
	"testing"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countBalanceRows(t *testing.T, ctx context.Context, employeeID string, year int) int {
	var count int
	err := testLeaveDB.QueryRow(ctx,
		`SELECT COUNT(*) FROM leave_balances WHERE employee_id = $1 AND year = $2`,
		employeeID, year).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestLeaveService_ProvisionYearlyBalances(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	year := time.Now().UTC().Year() + 1
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)

	require.NoError(t, svc.ProvisionYearlyBalances(ctx, year))
	assert.Equal(t, len(yearlyEntitlements), countBalanceRows(t, ctx, employeeID, year))

	earned := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, year)
	assert.Equal(t, "20", earned.Opening.String())
	assert.Equal(t, "20", earned.Available().String())
}

func TestLeaveService_ProvisionYearlyBalances_SecondRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	year := time.Now().UTC().Year() + 1
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)

	// A pre-existing row with consumption must survive provisioning untouched
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, year, 20)
	_, err := testLeaveDB.Exec(ctx,
		`UPDATE leave_balances SET used = 5, closing = 15 WHERE employee_id = $1 AND leave_type = $2 AND year = $3`,
		employeeID, leave.TypeEarned, year)
	require.NoError(t, err)

	require.NoError(t, svc.ProvisionYearlyBalances(ctx, year))
	require.NoError(t, svc.ProvisionYearlyBalances(ctx, year))

	assert.Equal(t, len(yearlyEntitlements), countBalanceRows(t, ctx, employeeID, year))

	earned := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, year)
	assert.Equal(t, "5", earned.Used.String())
	assert.Equal(t, "15", earned.Available().String())
}
