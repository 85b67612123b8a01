package notification

import (
	"context"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveSubmitted  NotificationType = "leave_submitted"
	TypeLeaveApproved   NotificationType = "leave_approved"
	TypeLeaveForwarded  NotificationType = "leave_forwarded"
	TypeLeaveRejected   NotificationType = "leave_rejected"
	TypeLeaveReturned   NotificationType = "leave_returned"
	TypeLeaveResubmit   NotificationType = "leave_resubmitted"
	TypeLeaveCancelled  NotificationType = "leave_cancelled"
	TypeLeaveRecalled   NotificationType = "leave_recalled"
	TypeBalanceAdjusted NotificationType = "balance_adjusted"
)

// Notification represents an in-app notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// Repository - interface for notifications table
type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	GetByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string, recipientID string) error
}
