package postgresql

import (
	"context"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
)

type approvalRepositoryImpl struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) leave.ApprovalRepository {
	return &approvalRepositoryImpl{db: db}
}

func (r *approvalRepositoryImpl) Create(ctx context.Context, approval leave.Approval) (leave.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_approvals (
			id, leave_id, step, step_role, approver_id,
			decision, to_role, comment, decided_at, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, $7, $8, NOW()
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		approval.LeaveID, approval.Step, approval.StepRole, approval.ApproverID,
		approval.Decision, approval.ToRole, approval.Comment, approval.DecidedAt,
	).Scan(&approval.ID, &approval.CreatedAt)

	if err != nil {
		return leave.Approval{}, err
	}

	return approval, nil
}

func (r *approvalRepositoryImpl) GetByLeaveID(ctx context.Context, leaveID string) ([]leave.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, leave_id, step, step_role, approver_id,
			   decision, to_role, comment, decided_at, created_at
		FROM leave_approvals
		WHERE leave_id = $1
		ORDER BY step ASC
	`

	rows, err := q.Query(ctx, query, leaveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := make([]leave.Approval, 0)
	for rows.Next() {
		var a leave.Approval
		if err := rows.Scan(
			&a.ID, &a.LeaveID, &a.Step, &a.StepRole, &a.ApproverID,
			&a.Decision, &a.ToRole, &a.Comment, &a.DecidedAt, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}

	return approvals, rows.Err()
}

func (r *approvalRepositoryImpl) Update(ctx context.Context, approval leave.Approval) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_approvals SET
			approver_id = $2,
			decision = $3,
			to_role = $4,
			comment = $5,
			decided_at = $6
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		approval.ID, approval.ApproverID, approval.Decision,
		approval.ToRole, approval.Comment, approval.DecidedAt,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// DeleteByLeaveID purges every approval row for a leave. Called only from the
// resubmission flow, inside its transaction: the chain restarts from scratch.
func (r *approvalRepositoryImpl) DeleteByLeaveID(ctx context.Context, leaveID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM leave_approvals WHERE leave_id = $1`, leaveID)
	return err
}
