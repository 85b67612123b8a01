package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.requester_id, lr.leave_type,
	lr.start_date, lr.end_date, lr.working_days,
	lr.reason, lr.status,
	lr.certificate_url, lr.fitness_certificate_url,
	lr.is_modified, lr.approved_at, lr.balance_deducted, lr.policy_version,
	lr.parent_id, lr.created_at, lr.updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.RequesterID, &lr.Type,
		&lr.StartDate, &lr.EndDate, &lr.WorkingDays,
		&lr.Reason, &lr.Status,
		&lr.CertificateURL, &lr.FitnessCertificateURL,
		&lr.IsModified, &lr.ApprovedAt, &lr.BalanceDeducted, &lr.PolicyVersion,
		&lr.ParentID, &lr.CreatedAt, &lr.UpdatedAt,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, requester_id, leave_type,
			start_date, end_date, working_days,
			reason, status,
			certificate_url, fitness_certificate_url,
			is_modified, balance_deducted, policy_version, parent_id,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2,
			$3, $4, $5,
			$6, $7,
			$8, $9,
			$10, $11, $12, $13,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.RequesterID, request.Type,
		request.StartDate, request.EndDate, request.WorkingDays,
		request.Reason, request.Status,
		request.CertificateURL, request.FitnessCertificateURL,
		request.IsModified, request.BalanceDeducted, request.PolicyVersion, request.ParentID,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr WHERE lr.id = $1`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return lr, nil
}

// GetForUpdate locks the request row for the duration of the ambient
// transaction. The second of two concurrent deciders blocks here and then
// sees the status the first one committed.
func (r *leaveRequestRepositoryImpl) GetForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr WHERE lr.id = $1 FOR UPDATE`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return lr, nil
}

func (r *leaveRequestRepositoryImpl) GetByRequester(ctx context.Context, requesterID string, year int) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		WHERE lr.requester_id = $1 AND EXTRACT(YEAR FROM lr.start_date) = $2
		ORDER BY lr.created_at DESC
	`

	rows, err := q.Query(ctx, query, requesterID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeaveRequests(rows)
}

func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, statuses []leave.LeaveStatus) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		WHERE lr.status = ANY($1)
		ORDER BY lr.created_at ASC
	`

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := q.Query(ctx, query, statusStrings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeaveRequests(rows)
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := " WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter.RequesterID != nil {
		where += fmt.Sprintf(" AND lr.requester_id = $%d", argPos)
		args = append(args, *filter.RequesterID)
		argPos++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND lr.status = $%d", argPos)
		args = append(args, string(*filter.Status))
		argPos++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND lr.leave_type = $%d", argPos)
		args = append(args, string(*filter.Type))
		argPos++
	}
	if filter.Year != nil {
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM lr.start_date) = $%d", argPos)
		args = append(args, *filter.Year)
		argPos++
	}

	countQuery := `SELECT COUNT(*) FROM leave_requests lr` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leaveRequestColumns + `, u.full_name, u.email
		FROM leave_requests lr
		JOIN users u ON u.id = lr.requester_id` + where +
		` ORDER BY lr.created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		var lr leave.LeaveRequest
		if err := rows.Scan(
			&lr.ID, &lr.RequesterID, &lr.Type,
			&lr.StartDate, &lr.EndDate, &lr.WorkingDays,
			&lr.Reason, &lr.Status,
			&lr.CertificateURL, &lr.FitnessCertificateURL,
			&lr.IsModified, &lr.ApprovedAt, &lr.BalanceDeducted, &lr.PolicyVersion,
			&lr.ParentID, &lr.CreatedAt, &lr.UpdatedAt,
			&lr.RequesterName, &lr.RequesterEmail,
		); err != nil {
			return nil, 0, err
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			leave_type = $2,
			start_date = $3,
			end_date = $4,
			working_days = $5,
			reason = $6,
			status = $7,
			certificate_url = $8,
			fitness_certificate_url = $9,
			is_modified = $10,
			approved_at = $11,
			balance_deducted = $12,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		request.ID,
		request.Type,
		request.StartDate,
		request.EndDate,
		request.WorkingDays,
		request.Reason,
		request.Status,
		request.CertificateURL,
		request.FitnessCertificateURL,
		request.IsModified,
		request.ApprovedAt,
		request.BalanceDeducted,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) CountOverlapping(ctx context.Context, requesterID string, start, end time.Time, excludeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM leave_requests
		WHERE requester_id = $1
		  AND status NOT IN ('rejected', 'cancelled', 'returned')
		  AND start_date <= $3
		  AND end_date >= $2
	`
	args := []interface{}{requesterID, start, end}
	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}

	var count int64
	err := q.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
