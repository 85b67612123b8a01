package postgresql

import (
	"context"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
)

type commentRepositoryImpl struct {
	db *database.DB
}

func NewCommentRepository(db *database.DB) leave.CommentRepository {
	return &commentRepositoryImpl{db: db}
}

func (r *commentRepositoryImpl) Create(ctx context.Context, comment leave.LeaveComment) (leave.LeaveComment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_comments (
			id, leave_id, author_id, author_role, body, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, NOW()
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		comment.LeaveID, comment.AuthorID, comment.AuthorRole, comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		return leave.LeaveComment{}, err
	}

	return comment, nil
}

func (r *commentRepositoryImpl) GetByLeaveID(ctx context.Context, leaveID string) ([]leave.LeaveComment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lc.id, lc.leave_id, lc.author_id, lc.author_role, lc.body, lc.created_at,
			   u.full_name AS author_name
		FROM leave_comments lc
		JOIN users u ON lc.author_id = u.id
		WHERE lc.leave_id = $1
		ORDER BY lc.created_at ASC
	`

	rows, err := q.Query(ctx, query, leaveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]leave.LeaveComment, 0)
	for rows.Next() {
		var c leave.LeaveComment
		if err := rows.Scan(
			&c.ID, &c.LeaveID, &c.AuthorID, &c.AuthorRole, &c.Body, &c.CreatedAt,
			&c.AuthorName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
