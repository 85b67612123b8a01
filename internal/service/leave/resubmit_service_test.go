package leave

import (
	"context"
	"testing"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitAndReturn seeds a returned request ready for resubmission
func submitAndReturn(t *testing.T, ctx context.Context, svc *Service, employeeID, hrAdminID string, req leave.CreateLeaveRequest) string {
	created, err := svc.Submit(ctx, employeeID, req)
	require.NoError(t, err)

	_, err = svc.Return(ctx, hrAdminID, created.ID, leave.ReturnRequest{
		Comment: "please correct the dates",
	})
	require.NoError(t, err)
	return created.ID
}

func TestLeaveService_Resubmit_Success(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	leaveID := submitAndReturn(t, ctx, svc, employeeID, hrAdminID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip out of town",
	})

	// Shift the request one week out
	nextMonday := monday.AddDate(0, 0, 7)
	resubmitted, err := svc.Resubmit(ctx, employeeID, leaveID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: nextMonday.Format("2006-01-02"),
		EndDate:   nextMonday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip, corrected week",
	})

	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusPending), resubmitted.Status)
	assert.True(t, resubmitted.IsModified)
	assert.False(t, resubmitted.BalanceDeducted)
	assert.Nil(t, resubmitted.ApprovedAt)
	assert.Equal(t, nextMonday.Format("2006-01-02"), resubmitted.StartDate)
	assert.Equal(t, 5, resubmitted.WorkingDays)

	// The pre-correction state is snapshotted
	versions, err := svc.GetVersions(ctx, leaveID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, leave.StatusReturned, versions[0].Status)
	assert.Equal(t, monday.Format("2006-01-02"), versions[0].StartDate.Format("2006-01-02"))
}

func TestLeaveService_Resubmit_ChainRestarts(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	deptHeadID := createLeaveTestUser(t, ctx, user.RoleDeptHead)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	created, err := svc.Submit(ctx, employeeID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip out of town",
	})
	require.NoError(t, err)

	// HR admin forwards, then the department head sends it back
	_, err = svc.Approve(ctx, hrAdminID, created.ID, leave.DecideRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, countApprovalRows(t, ctx, created.ID))

	_, err = svc.Return(ctx, deptHeadID, created.ID, leave.ReturnRequest{
		Comment: "dates clash with the release",
	})
	require.NoError(t, err)

	_, err = svc.Resubmit(ctx, employeeID, created.ID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.AddDate(0, 0, 7).Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 11).Format("2006-01-02"),
		Reason:    "moved clear of the release",
	})
	require.NoError(t, err)

	// The chain restarts from step one: no approval rows survive
	assert.Equal(t, 0, countApprovalRows(t, ctx, created.ID))

	// HR admin is the current approver again; the dept head must wait
	_, err = svc.Approve(ctx, deptHeadID, created.ID, leave.DecideRequest{})
	assert.ErrorIs(t, err, leave.ErrNotCurrentApprover)

	_, err = svc.Approve(ctx, hrAdminID, created.ID, leave.DecideRequest{})
	assert.NoError(t, err)
}

func TestLeaveService_Resubmit_RestoresPriorDeduction(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	created, err := svc.Submit(ctx, employeeID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip out of town",
	})
	require.NoError(t, err)

	// Simulate a request that carried its deduction into the returned state
	_, err = testLeaveDB.Exec(ctx, `
		UPDATE leave_requests SET status = 'returned', balance_deducted = true WHERE id = $1
	`, created.ID)
	require.NoError(t, err)
	_, err = testLeaveDB.Exec(ctx, `
		UPDATE leave_balances SET used = 5, closing = closing - 5
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3
	`, employeeID, leave.TypeEarned, monday.Year())
	require.NoError(t, err)

	// Resubmit with a shorter range: the full old deduction comes back first
	resubmitted, err := svc.Resubmit(ctx, employeeID, created.ID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.AddDate(0, 0, 7).Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 9).Format("2006-01-02"),
		Reason:    "shortened to three days",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusPending), resubmitted.Status)
	assert.False(t, resubmitted.BalanceDeducted)
	assert.Equal(t, 3, resubmitted.WorkingDays)

	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year())
	assert.True(t, balance.Used.IsZero())
	assert.Equal(t, "20", balance.Available().String())

	// A second restore must not happen if the approval runs again
	_, err = svc.Approve(ctx, hrAdminID, created.ID, leave.DecideRequest{})
	require.NoError(t, err)
}

func TestLeaveService_Resubmit_ExcessiveModification(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	leaveID := submitAndReturn(t, ctx, svc, employeeID, hrAdminID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 2).Format("2006-01-02"),
		Reason:    "short break",
	})

	// Growing from 3 to 10 working days exceeds the cap of 3
	_, err := svc.Resubmit(ctx, employeeID, leaveID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 11).Format("2006-01-02"),
		Reason:    "actually need two weeks",
	})
	assert.ErrorIs(t, err, leave.ErrExcessiveModification)
}

func TestLeaveService_Resubmit_CannotChangeType(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	leaveID := submitAndReturn(t, ctx, svc, employeeID, hrAdminID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.Format("2006-01-02"),
		Reason:    "personal errand",
	})

	_, err := svc.Resubmit(ctx, employeeID, leaveID, leave.ResubmitRequest{
		Type:      string(leave.TypeMedical),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.Format("2006-01-02"),
		Reason:    "it was medical after all",
	})
	assert.ErrorIs(t, err, leave.ErrCannotChangeType)
}

func TestLeaveService_Resubmit_NotOwner(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	otherID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	leaveID := submitAndReturn(t, ctx, svc, employeeID, hrAdminID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.Format("2006-01-02"),
		Reason:    "personal errand",
	})

	_, err := svc.Resubmit(ctx, otherID, leaveID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.Format("2006-01-02"),
		Reason:    "personal errand",
	})
	assert.ErrorIs(t, err, leave.ErrNotRequestOwner)
}

func TestLeaveService_Resubmit_OnlyFromReturned(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	created, err := svc.Submit(ctx, employeeID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.Format("2006-01-02"),
		Reason:    "personal errand",
	})
	require.NoError(t, err)

	// Still in submitted status, not returned
	_, err = svc.Resubmit(ctx, employeeID, created.ID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.Format("2006-01-02"),
		Reason:    "personal errand",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidStatus)
}

func TestLeaveService_Resubmit_SecondCorrectionAddsVersion(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	leaveID := submitAndReturn(t, ctx, svc, employeeID, hrAdminID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip out of town",
	})

	_, err := svc.Resubmit(ctx, employeeID, leaveID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.AddDate(0, 0, 7).Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 11).Format("2006-01-02"),
		Reason:    "family trip, corrected week",
	})
	require.NoError(t, err)

	// Returned a second time and corrected again
	_, err = svc.Return(ctx, hrAdminID, leaveID, leave.ReturnRequest{
		Comment: "that week is blocked too",
	})
	require.NoError(t, err)

	_, err = svc.Resubmit(ctx, employeeID, leaveID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.AddDate(0, 0, 14).Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 18).Format("2006-01-02"),
		Reason:    "family trip, third attempt",
	})
	require.NoError(t, err)

	versions, err := svc.GetVersions(ctx, leaveID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
}

func TestLeaveService_Resubmit_FailureLeavesRequestUntouched(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	deptHeadID := createLeaveTestUser(t, ctx, user.RoleDeptHead)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 5)

	created, err := svc.Submit(ctx, employeeID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip out of town",
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, hrAdminID, created.ID, leave.DecideRequest{})
	require.NoError(t, err)
	_, err = svc.Return(ctx, deptHeadID, created.ID, leave.ReturnRequest{
		Comment: "check the balance first",
	})
	require.NoError(t, err)

	// Eight working days need more balance than the five available
	_, err = svc.Resubmit(ctx, employeeID, created.ID, leave.ResubmitRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.AddDate(0, 0, 7).Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 16).Format("2006-01-02"),
		Reason:    "family trip, longer stay",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	// The failed resubmission left nothing behind
	current, err := svc.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusReturned), current.Status)
	assert.Equal(t, 5, current.WorkingDays)
	assert.False(t, current.IsModified)

	assert.Equal(t, 1, countApprovalRows(t, ctx, created.ID))

	versions, err := svc.GetVersions(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 0)

	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year())
	assert.True(t, balance.Used.IsZero())
	assert.Equal(t, "5", balance.Available().String())
}
