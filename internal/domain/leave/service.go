package leave

import (
	"context"
)

// LeaveService is the lifecycle orchestrator boundary. Every state-changing
// operation commits its ledger mutation, request mutation, version snapshot,
// comments and audit entry as one atomic unit.
type LeaveService interface {
	// Lifecycle
	Submit(ctx context.Context, requesterID string, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, approverID, leaveID string, req DecideRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, approverID, leaveID string, req RejectRequest) (LeaveRequestResponse, error)
	Return(ctx context.Context, approverID, leaveID string, req ReturnRequest) (LeaveRequestResponse, error)
	Resubmit(ctx context.Context, requesterID, leaveID string, req ResubmitRequest) (LeaveRequestResponse, error)
	Extend(ctx context.Context, requesterID, leaveID string, req ExtendRequest) (LeaveRequestResponse, error)
	Shorten(ctx context.Context, requesterID, leaveID string, req ShortenRequest) (LeaveRequestResponse, error)
	PartialCancel(ctx context.Context, requesterID, leaveID string, req CancelRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, requesterID, leaveID string, req CancelRequest) (LeaveRequestResponse, error)
	RequestCancellation(ctx context.Context, requesterID, leaveID string, req CancelRequest) (LeaveRequestResponse, error)
	DecideCancellation(ctx context.Context, approverID, leaveID string, req DecideCancellationRequest) (LeaveRequestResponse, error)
	Recall(ctx context.Context, actorID, leaveID string, req RecallRequest) (LeaveRequestResponse, error)

	// Queries
	GetRequest(ctx context.Context, leaveID string) (LeaveRequestResponse, error)
	ListMyRequests(ctx context.Context, requesterID string, year int) ([]LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter) (ListRequestsResponse, error)
	ListPendingForApprover(ctx context.Context, approverID string) ([]LeaveRequestResponse, error)
	GetVersions(ctx context.Context, leaveID string) ([]LeaveVersion, error)
	GetComments(ctx context.Context, leaveID string) ([]LeaveComment, error)

	// Balances
	GetMyBalances(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error)
	AdjustBalance(ctx context.Context, actorID string, req AdjustBalanceRequest) (BalanceResponse, error)

	// Holidays
	ListHolidays(ctx context.Context) ([]Holiday, error)
	CreateHoliday(ctx context.Context, actorID string, req CreateHolidayRequest) (Holiday, error)
}
