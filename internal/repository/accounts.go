package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spotlight/spotlight-backend/internal/model"
)

const accountColumns = `account_id, name, email, role, customer_id`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.CustomerID); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount возвращает учётную запись по идентификатору.
func (r *PostgresRepository) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`,
		id,
	)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

// ListAccounts возвращает учётные записи с необязательным поиском
// по имени и email.
func (r *PostgresRepository) ListAccounts(ctx context.Context, q string, limit int) ([]model.Account, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if q != "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+accountColumns+`
			 FROM accounts
			 WHERE name ILIKE $1 OR email ILIKE $1
			 ORDER BY account_id DESC
			 LIMIT $2`,
			"%"+q+"%", limit,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+accountColumns+` FROM accounts ORDER BY account_id DESC LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return accounts, nil
}

// CreateAccount создаёт учётную запись и возвращает её идентификатор.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a *model.Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (name, email, role, customer_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING account_id`,
		a.Name, a.Email, a.Role, a.CustomerID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrAccountExists, a.Email)
		}
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

// UpdateAccount выполняет полную замену учётной записи.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, a *model.Account) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET name = $1, email = $2, role = $3, customer_id = $4
		 WHERE account_id = $5`,
		a.Name, a.Email, a.Role, a.CustomerID, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount удаляет учётную запись.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete account: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
