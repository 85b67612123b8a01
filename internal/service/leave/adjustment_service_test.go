package leave

import (
	"context"
	"testing"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/audit"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recentMonday returns the most recent Monday not after today
func recentMonday() time.Time {
	d := NormalizeDate(time.Now().UTC())
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// seedOngoingApprovedLeave inserts an approved, balance-deducted request that
// spans today, plus the matching ledger state.
func seedOngoingApprovedLeave(t *testing.T, ctx context.Context, employeeID string, leaveType leave.LeaveType, start, end time.Time, workingDays int, opening int) string {
	leaveTestInit()
	var leaveID string
	err := testLeaveDB.QueryRow(ctx, `
		INSERT INTO leave_requests (
			id, requester_id, leave_type, start_date, end_date, working_days,
			reason, status, approved_at, balance_deducted, policy_version, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5,
			'seeded ongoing leave', 'approved', NOW(), true, 1, NOW(), NOW()
		) RETURNING id
	`, employeeID, leaveType, start, end, workingDays).Scan(&leaveID)
	require.NoError(t, err)

	_, err = testLeaveDB.Exec(ctx, `
		INSERT INTO leave_balances (id, employee_id, leave_type, year, opening, accrued, used, closing, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, 0, $5, $4 - $5, NOW(), NOW())
	`, employeeID, leaveType, start.Year(), opening, workingDays)
	require.NoError(t, err)

	return leaveID
}

// approveFullEarnedChain walks a submitted earned request through all three steps
func approveFullEarnedChain(t *testing.T, ctx context.Context, svc *Service, leaveID, hrAdminID, deptHeadID, hrHeadID string) {
	_, err := svc.Approve(ctx, hrAdminID, leaveID, leave.DecideRequest{})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, deptHeadID, leaveID, leave.DecideRequest{})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, hrHeadID, leaveID, leave.DecideRequest{})
	require.NoError(t, err)
}

func TestLeaveService_Cancel_ApprovedBeforeStart(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	monday := futureMonday(0)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	deptHeadID := createLeaveTestUser(t, ctx, user.RoleDeptHead)
	hrHeadID := createLeaveTestUser(t, ctx, user.RoleHRHead)
	seedLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year(), 20)

	created, err := svc.Submit(ctx, employeeID, leave.CreateLeaveRequest{
		Type:      string(leave.TypeEarned),
		StartDate: monday.Format("2006-01-02"),
		EndDate:   monday.AddDate(0, 0, 4).Format("2006-01-02"),
		Reason:    "family trip out of town",
	})
	require.NoError(t, err)
	approveFullEarnedChain(t, ctx, svc, created.ID, hrAdminID, deptHeadID, hrHeadID)

	cancelled, err := svc.Cancel(ctx, employeeID, created.ID, leave.CancelRequest{
		Reason: "trip fell through",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancelled), cancelled.Status)
	assert.False(t, cancelled.BalanceDeducted)

	// The full deduction comes back
	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year())
	assert.True(t, balance.Used.IsZero())
	assert.Equal(t, "20", balance.Available().String())
}

func TestLeaveService_Cancel_SubmittedNoLedger(t *testing.T) {
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

	cancelled, err := svc.Cancel(ctx, employeeID, created.ID, leave.CancelRequest{
		Reason: "no longer needed",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancelled), cancelled.Status)

	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, monday.Year())
	assert.True(t, balance.Used.IsZero())
}

func TestLeaveService_Cancel_OngoingMustUseCancellationRequest(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	_, err := svc.Cancel(ctx, employeeID, leaveID, leave.CancelRequest{
		Reason: "want to come back",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyStarted)
}

func TestLeaveService_Shorten_RestoresFreedDays(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	today := NormalizeDate(time.Now().UTC())
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	shortened, err := svc.Shorten(ctx, employeeID, leaveID, leave.ShortenRequest{
		NewEndDate: today.Format("2006-01-02"),
		Reason:     "back early",
	})
	require.NoError(t, err)

	engine := NewPolicyEngine(svc.cfg)
	expectedDays := engine.CountWorkingDays(start, today, HolidaySet{})

	assert.Equal(t, string(leave.StatusApproved), shortened.Status)
	assert.Equal(t, expectedDays, shortened.WorkingDays)
	assert.Equal(t, today.Format("2006-01-02"), shortened.EndDate)

	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, start.Year())
	assert.Equal(t, int64(expectedDays), balance.Used.IntPart())
}

func TestLeaveService_PartialCancel_RestoresFutureDays(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	today := NormalizeDate(time.Now().UTC())
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	result, err := svc.PartialCancel(ctx, employeeID, leaveID, leave.CancelRequest{
		Reason: "rest of the leave not needed",
	})
	require.NoError(t, err)

	engine := NewPolicyEngine(svc.cfg)
	yesterday := today.AddDate(0, 0, -1)
	consumed := 0
	if !yesterday.Before(start) {
		consumed = engine.CountWorkingDays(start, yesterday, HolidaySet{})
	}

	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, start.Year())
	assert.Equal(t, int64(consumed), balance.Used.IntPart())

	if consumed == 0 {
		// Nothing consumed yet: the whole request cancels
		assert.Equal(t, string(leave.StatusCancelled), result.Status)
		assert.False(t, result.BalanceDeducted)
	} else {
		assert.Equal(t, string(leave.StatusApproved), result.Status)
		assert.Equal(t, consumed, result.WorkingDays)
		assert.Equal(t, yesterday.Format("2006-01-02"), result.EndDate)
	}
}

func TestLeaveService_Extend_CreatesLinkedRequest(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11) // a Friday
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	// One more week: Sat through the following Friday adds five working days
	newEnd := end.AddDate(0, 0, 7)
	extension, err := svc.Extend(ctx, employeeID, leaveID, leave.ExtendRequest{
		NewEndDate: newEnd.Format("2006-01-02"),
		Reason:     "recovery taking longer",
	})
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusSubmitted), extension.Status)
	assert.Equal(t, 5, extension.WorkingDays)
	require.NotNil(t, extension.ParentID)
	assert.Equal(t, leaveID, *extension.ParentID)
	assert.Equal(t, end.AddDate(0, 0, 1).Format("2006-01-02"), extension.StartDate)

	// The extension runs its own chain; the original is untouched
	original, err := svc.GetRequest(ctx, leaveID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), original.Status)
	assert.Equal(t, 10, original.WorkingDays)
}

func TestLeaveService_Extend_RejectsEarlierEndDate(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	_, err := svc.Extend(ctx, employeeID, leaveID, leave.ExtendRequest{
		NewEndDate: end.AddDate(0, 0, -1).Format("2006-01-02"),
		Reason:     "oops",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidExtendDate)
}

func TestLeaveService_CancellationRequest_Flow(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	requested, err := svc.RequestCancellation(ctx, employeeID, leaveID, leave.CancelRequest{
		Reason: "project pulled me back",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancellationRequested), requested.Status)

	// Declining puts the leave back untouched
	declined, err := svc.DecideCancellation(ctx, hrAdminID, leaveID, leave.DecideCancellationRequest{
		Approve: false,
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), declined.Status)

	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, start.Year())
	assert.Equal(t, int64(10), balance.Used.IntPart())

	// Request again and grant it this time
	_, err = svc.RequestCancellation(ctx, employeeID, leaveID, leave.CancelRequest{
		Reason: "project pulled me back",
	})
	require.NoError(t, err)

	granted, err := svc.DecideCancellation(ctx, hrAdminID, leaveID, leave.DecideCancellationRequest{
		Approve: true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancelled), granted.Status)

	// Only the unconsumed days come back
	engine := NewPolicyEngine(svc.cfg)
	yesterday := NormalizeDate(time.Now().UTC()).AddDate(0, 0, -1)
	consumed := 0
	if !yesterday.Before(start) {
		consumed = engine.CountWorkingDays(start, yesterday, HolidaySet{})
	}
	balance = getLeaveTestBalance(t, ctx, employeeID, leave.TypeEarned, start.Year())
	assert.Equal(t, int64(consumed), balance.Used.IntPart())
}

func TestLeaveService_DecideCancellation_DeclineRecordsCommentAndAudit(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeEarned, start, end, 10, 20)

	_, err := svc.RequestCancellation(ctx, employeeID, leaveID, leave.CancelRequest{
		Reason: "project pulled me back",
	})
	require.NoError(t, err)

	comment := "coverage is fine, enjoy the leave"
	declined, err := svc.DecideCancellation(ctx, hrAdminID, leaveID, leave.DecideCancellationRequest{
		Approve: false,
		Comment: &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), declined.Status)

	comments, err := svc.GetComments(ctx, leaveID)
	require.NoError(t, err)
	var found bool
	for _, c := range comments {
		if c.Body == comment {
			found = true
			assert.Equal(t, user.RoleHRAdmin, c.AuthorRole)
		}
	}
	assert.True(t, found, "approver comment should be persisted with the decline")

	var auditCount int
	err = testLeaveDB.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE target_id = $1 AND action = $2`,
		leaveID, string(audit.ActionLeaveCancellationDeny)).Scan(&auditCount)
	require.NoError(t, err)
	assert.Equal(t, 1, auditCount)
}

func TestLeaveService_Recall_MedicalNeedsFitnessCertificate(t *testing.T) {
	ctx := context.Background()
	truncateLeaveTables(t, ctx)
	svc := newTestLeaveService()

	start := recentMonday()
	end := start.AddDate(0, 0, 11)
	employeeID := createLeaveTestUser(t, ctx, user.RoleEmployee)
	hrAdminID := createLeaveTestUser(t, ctx, user.RoleHRAdmin)
	leaveID := seedOngoingApprovedLeave(t, ctx, employeeID, leave.TypeMedical, start, end, 10, 14)

	_, err := svc.Recall(ctx, hrAdminID, leaveID, leave.RecallRequest{
		Reason: "critical incident",
	})
	assert.Error(t, err)

	certURL := "https://files.example.com/certs/fit-to-work.pdf"
	recalled, err := svc.Recall(ctx, hrAdminID, leaveID, leave.RecallRequest{
		FitnessCertificateURL: certURL,
		Reason:                "critical incident",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusRecalled), recalled.Status)
	require.NotNil(t, recalled.FitnessCertificateURL)
	assert.Equal(t, certURL, *recalled.FitnessCertificateURL)

	// Only consumed days stay on the ledger
	engine := NewPolicyEngine(svc.cfg)
	yesterday := NormalizeDate(time.Now().UTC()).AddDate(0, 0, -1)
	consumed := 0
	if !yesterday.Before(start) {
		consumed = engine.CountWorkingDays(start, yesterday, HolidaySet{})
	}
	assert.Equal(t, consumed, recalled.WorkingDays)
	balance := getLeaveTestBalance(t, ctx, employeeID, leave.TypeMedical, start.Year())
	assert.Equal(t, int64(consumed), balance.Used.IntPart())
}
