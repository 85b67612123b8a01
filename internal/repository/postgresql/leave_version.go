package postgresql

import (
	"context"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
)

type versionRepositoryImpl struct {
	db *database.DB
}

func NewVersionRepository(db *database.DB) leave.VersionRepository {
	return &versionRepositoryImpl{db: db}
}

func (r *versionRepositoryImpl) Create(ctx context.Context, version leave.LeaveVersion) (leave.LeaveVersion, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_versions (
			id, leave_id, version, leave_type,
			start_date, end_date, working_days,
			reason, status, certificate_url, created_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6,
			$7, $8, $9, NOW()
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		version.LeaveID, version.Version, version.Type,
		version.StartDate, version.EndDate, version.WorkingDays,
		version.Reason, version.Status, version.CertificateURL,
	).Scan(&version.ID, &version.CreatedAt)

	if err != nil {
		return leave.LeaveVersion{}, err
	}

	return version, nil
}

func (r *versionRepositoryImpl) GetByLeaveID(ctx context.Context, leaveID string) ([]leave.LeaveVersion, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, leave_id, version, leave_type,
			   start_date, end_date, working_days,
			   reason, status, certificate_url, created_at
		FROM leave_versions
		WHERE leave_id = $1
		ORDER BY version ASC
	`

	rows, err := q.Query(ctx, query, leaveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]leave.LeaveVersion, 0)
	for rows.Next() {
		var v leave.LeaveVersion
		if err := rows.Scan(
			&v.ID, &v.LeaveID, &v.Version, &v.Type,
			&v.StartDate, &v.EndDate, &v.WorkingDays,
			&v.Reason, &v.Status, &v.CertificateURL, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

func (r *versionRepositoryImpl) CountByLeaveID(ctx context.Context, leaveID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_versions WHERE leave_id = $1`, leaveID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
