package notification

import "context"

type Service interface {
	// Notify enqueues a notification for delivery. Best-effort: failures are
	// logged, never surfaced to the calling operation.
	Notify(ctx context.Context, recipientID string, t NotificationType, title, message string, data map[string]interface{})
	List(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, recipientID string, notificationID string) error
	Stop()
}
