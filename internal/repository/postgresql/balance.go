package postgresql

import (
	"context"
	"errors"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type balanceRepositoryImpl struct {
	db *database.DB
}

func NewBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &balanceRepositoryImpl{db: db}
}

const balanceColumns = `
	id, employee_id, leave_type, year,
	opening, accrued, used, closing,
	created_at, updated_at`

func scanBalance(row pgx.Row) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveType, &b.Year,
		&b.Opening, &b.Accrued, &b.Used, &b.Closing,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *balanceRepositoryImpl) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			id, employee_id, leave_type, year,
			opening, accrued, used, closing,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		balance.EmployeeID, balance.LeaveType, balance.Year,
		balance.Opening, balance.Accrued, balance.Used, balance.Closing,
	).Scan(&balance.ID, &balance.CreatedAt, &balance.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return leave.Balance{}, leave.ErrBalanceAlreadyExists
		}
		return leave.Balance{}, err
	}

	return balance, nil
}

func (r *balanceRepositoryImpl) Get(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3`

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveType, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrNoBalanceRecord
		}
		return leave.Balance{}, err
	}

	return b, nil
}

// GetForUpdate locks the balance row for the duration of the ambient
// transaction. Concurrent deductions against the same (employee, type, year)
// serialize here.
func (r *balanceRepositoryImpl) GetForUpdate(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3
		FOR UPDATE`

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, leaveType, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrNoBalanceRecord
		}
		return leave.Balance{}, err
	}

	return b, nil
}

func (r *balanceRepositoryImpl) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances
		WHERE employee_id = $1 AND year = $2
		ORDER BY leave_type`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// ApplyUsedDelta shifts used by delta and closing by the inverse. The
// guarding CHECK (opening + accrued - used >= 0) on the table is the last
// line of defense; callers validate against the locked row first.
func (r *balanceRepositoryImpl) ApplyUsedDelta(ctx context.Context, id string, delta decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances SET
			used = used + $2,
			closing = closing - $2,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, delta)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrNoBalanceRecord
	}
	return nil
}

func (r *balanceRepositoryImpl) Update(ctx context.Context, balance leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances SET
			opening = $2,
			accrued = $3,
			used = $4,
			closing = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		balance.ID, balance.Opening, balance.Accrued, balance.Used, balance.Closing,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrNoBalanceRecord
	}
	return nil
}
