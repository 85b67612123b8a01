package postgresql

import (
	"context"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, holiday leave.Holiday) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (id, date, name, created_at)
		VALUES (uuidv7(), $1, $2, NOW())
		ON CONFLICT (date) DO NOTHING
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, holiday.Date, holiday.Name).
		Scan(&holiday.ID, &holiday.CreatedAt)
	if err != nil {
		return leave.Holiday{}, leave.ErrHolidayExists
	}

	return holiday, nil
}

func (r *holidayRepositoryImpl) List(ctx context.Context) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, date, name, created_at FROM holidays ORDER BY date ASC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]leave.Holiday, 0)
	for rows.Next() {
		var h leave.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

func (r *holidayRepositoryImpl) ListRange(ctx context.Context, from, to time.Time) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, date, name, created_at FROM holidays
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]leave.Holiday, 0)
	for rows.Next() {
		var h leave.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}
