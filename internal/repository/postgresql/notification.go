package postgresql

import (
	"context"
	"encoding/json"

	"github.com/peoplecore/leave-backend-go/internal/domain/notification"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	data, err := json.Marshal(n.Data)
	if err != nil {
		return notification.Notification{}, err
	}

	query := `
		INSERT INTO notifications (
			id, recipient_id, sender_id, type, title, message, data, is_read, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, false, NOW()
		) RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query,
		n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, data,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return notification.Notification{}, err
	}

	return n, nil
}

func (r *notificationRepositoryImpl) GetByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		var data []byte
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title,
			&n.Message, &data, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, id string, recipientID string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = NOW()
		WHERE id = $1 AND recipient_id = $2
	`, id, recipientID)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
