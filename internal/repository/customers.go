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

const customerColumns = `customer_id, first_name, last_name, email, position, company_name,
	 total_order_times, vip, avatar_url, balance, tel`

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Position, &c.CompanyName,
		&c.TotalOrderTimes, &c.VIP, &c.AvatarURL, &c.Balance, &c.Tel,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomer возвращает клиента по идентификатору.
func (r *PostgresRepository) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`,
		id,
	)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return c, nil
}

// CreateCustomer создаёт нового клиента и возвращает его идентификатор.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, c *model.Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (first_name, last_name, email, position, company_name,
		                        total_order_times, vip, avatar_url, balance, tel)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING customer_id`,
		c.FirstName, c.LastName, c.Email, c.Position, c.CompanyName,
		c.TotalOrderTimes, c.VIP, c.AvatarURL, c.Balance, c.Tel,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrCustomerExists, c.Email)
		}
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

// UpdateCustomer выполняет полную замену записи клиента.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE customers
		 SET first_name = $1, last_name = $2, email = $3, position = $4, company_name = $5,
		     total_order_times = $6, vip = $7, avatar_url = $8, balance = $9, tel = $10
		 WHERE customer_id = $11`,
		c.FirstName, c.LastName, c.Email, c.Position, c.CompanyName,
		c.TotalOrderTimes, c.VIP, c.AvatarURL, c.Balance, c.Tel, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCustomer удаляет клиента. Клиент с заказами не удаляется — проверка
// выполняется в той же транзакции, что и удаление.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, id int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderCount int64
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`,
		id,
	).Scan(&orderCount)
	if err != nil {
		return 0, fmt.Errorf("count customer orders: %w", err)
	}
	if orderCount > 0 {
		return 0, ErrCustomerHasOrders
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM customers WHERE customer_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// ListCustomers возвращает клиентов с необязательным поиском по имени и email.
// Поиск — регистронезависимое вхождение подстроки.
func (r *PostgresRepository) ListCustomers(ctx context.Context, q string, limit int) ([]model.Customer, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if q != "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+customerColumns+`
			 FROM customers
			 WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
			 ORDER BY customer_id DESC
			 LIMIT $2`,
			"%"+q+"%", limit,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+customerColumns+`
			 FROM customers
			 ORDER BY customer_id DESC
			 LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return customers, nil
}

// AddFunds атомарно увеличивает баланс клиента одним UPDATE-выражением
// и возвращает новый баланс. Отдельного чтения перед записью нет,
// параллельные пополнения не теряются.
func (r *PostgresRepository) AddFunds(ctx context.Context, id int64, amount float64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx,
		`UPDATE customers
		 SET balance = COALESCE(balance, 0) + $1
		 WHERE customer_id = $2
		 RETURNING balance`,
		amount, id,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("add funds: %w", err)
	}
	return balance, nil
}

// CustomersMetrics содержит агрегированные показатели по клиентам.
type CustomersMetrics struct {
	Total        int64   `json:"total"`
	VIP          int64   `json:"vip"`
	NeverOrdered int64   `json:"never_ordered"`
	AvgOrderDays float64 `json:"avg_order_time"`
}

// GetCustomersMetrics возвращает агрегированные показатели по клиентам.
// Запросы независимые, согласованность между числами не гарантируется.
func (r *PostgresRepository) GetCustomersMetrics(ctx context.Context) (*CustomersMetrics, error) {
	var m CustomersMetrics

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&m.Total)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE vip`).Scan(&m.VIP)
	if err != nil {
		return nil, fmt.Errorf("count vip customers: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM customers c
		 LEFT JOIN orders o ON o.customer_id = c.customer_id
		 WHERE o.order_id IS NULL`,
	).Scan(&m.NeverOrdered)
	if err != nil {
		return nil, fmt.Errorf("count customers without orders: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(days_since), 0)
		 FROM (
		     SELECT CURRENT_DATE - MAX(order_date) AS days_since
		     FROM orders
		     GROUP BY customer_id
		 ) t`,
	).Scan(&m.AvgOrderDays)
	if err != nil {
		return nil, fmt.Errorf("avg days since last order: %w", err)
	}

	return &m, nil
}

// CustomersSummary возвращает последних клиентов для сводки.
func (r *PostgresRepository) CustomersSummary(ctx context.Context, limit int) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+`
		 FROM customers
		 ORDER BY customer_id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers summary: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return customers, nil
}
