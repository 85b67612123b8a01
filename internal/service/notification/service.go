package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/notification"
	"github.com/peoplecore/leave-backend-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int // default: 2
	QueueSize   int // default: 1000
}

type service struct {
	repo notification.Repository
	hub  *sse.Hub
	cfg  Config

	queue  chan notification.Notification
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotificationService creates a notification service backed by a worker
// pool. Delivery is asynchronous so a slow insert or a full SSE channel never
// blocks the lifecycle operation that triggered it.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		cfg:    cfg,
		queue:  make(chan notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

func (s *service) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			// Drain what is already queued before exiting
			for {
				select {
				case n := <-s.queue:
					s.deliver(n)
				default:
					return
				}
			}
		case n := <-s.queue:
			s.deliver(n)
		}
	}
}

func (s *service) deliver(n notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		slog.Error("Failed to persist notification",
			"recipient_id", n.RecipientID, "type", n.Type, "error", err)
		return
	}

	s.hub.Publish(created.RecipientID, sse.Event{
		UserID: created.RecipientID,
		Event:  string(created.Type),
		Data:   created,
	})
}

// Notify enqueues a notification. Drops with a log entry when the queue is
// full rather than blocking the caller.
func (s *service) Notify(ctx context.Context, recipientID string, t notification.NotificationType, title, message string, data map[string]interface{}) {
	n := notification.Notification{
		RecipientID: recipientID,
		Type:        t,
		Title:       title,
		Message:     message,
		Data:        data,
	}

	select {
	case s.queue <- n:
	default:
		slog.Warn("Notification queue full, dropping notification",
			"recipient_id", recipientID, "type", t)
	}
}

func (s *service) List(ctx context.Context, recipientID string, unreadOnly bool) ([]notification.Notification, error) {
	return s.repo.GetByRecipient(ctx, recipientID, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, recipientID string, notificationID string) error {
	return s.repo.MarkRead(ctx, notificationID, recipientID)
}

// Stop waits for in-flight deliveries to finish
func (s *service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("Notification service stopped")
}
