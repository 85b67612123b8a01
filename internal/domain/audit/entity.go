package audit

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Action tags every state-changing lifecycle operation writes
type Action string

const (
	ActionLeaveSubmit             Action = "LEAVE_SUBMIT"
	ActionLeaveApprove            Action = "LEAVE_APPROVE"
	ActionLeaveForward            Action = "LEAVE_FORWARD"
	ActionLeaveReject             Action = "LEAVE_REJECT"
	ActionLeaveReturn             Action = "LEAVE_RETURN"
	ActionLeaveResubmit           Action = "LEAVE_RESUBMIT"
	ActionBalanceRestoredResubmit Action = "BALANCE_RESTORED_ON_RESUBMIT"
	ActionLeaveExtend             Action = "LEAVE_EXTEND"
	ActionLeaveShorten            Action = "LEAVE_SHORTEN"
	ActionLeavePartialCancel      Action = "LEAVE_PARTIAL_CANCEL"
	ActionLeaveCancel             Action = "LEAVE_CANCEL"
	ActionLeaveCancellationReq    Action = "LEAVE_CANCELLATION_REQUESTED"
	ActionLeaveCancellationDeny   Action = "LEAVE_CANCELLATION_DECLINED"
	ActionLeaveRecall             Action = "LEAVE_RECALL"
	ActionBalanceAdjust           Action = "BALANCE_ADJUST"
	ActionHolidayCreate           Action = "HOLIDAY_CREATE"
)

// Details is the structured payload of an audit entry (old/new values of
// changed fields, restored amounts, version numbers).
type Details map[string]interface{}

// Value implements driver.Valuer for database storage
func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for database retrieval
func (d *Details) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan audit details: invalid type")
	}
	return json.Unmarshal(bytes, d)
}

// Entry entity - append-only, one row per state-changing operation.
// Written inside the same transaction as the mutation it documents.
type Entry struct {
	ID        string
	ActorID   string
	Action    Action
	TargetID  string
	Details   Details
	CreatedAt time.Time
}

// Repository - interface for audit_log table. Append-only; no Update, no
// Delete.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	GetByTarget(ctx context.Context, targetID string) ([]Entry, error)
	GetByActor(ctx context.Context, actorID string) ([]Entry, error)
}
