package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spotlight/spotlight-backend/internal/model"
)

const orderColumns = `order_id, order_date, total, customer_id, status`

// pendingSubstatusInitial — подстадия, с которой заказ попадает в маркерную
// таблицу сразу после создания.
const pendingSubstatusInitial = "in_cart"

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.Date, &o.Total, &o.CustomerID, &o.Status); err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// CreateOrder создаёт заказ вместе с маркером необработанности. Обе вставки
// выполняются в одной транзакции: заказ без маркера появиться не может.
func (r *PostgresRepository) CreateOrder(ctx context.Context, date time.Time, total float64, customerID int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (order_date, total, customer_id, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING order_id`,
		date, total, customerID, model.OrderStatusPending,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return 0, fmt.Errorf("%w: %d", ErrNoCustomer, customerID)
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO pending_orders (order_id, substatus) VALUES ($1, $2)`,
		id, pendingSubstatusInitial,
	)
	if err != nil {
		return 0, fmt.Errorf("insert pending marker: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return id, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`,
		id,
	)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

// OrdersFilter описывает фильтры списка заказов.
type OrdersFilter struct {
	CustomerID *int64
	StartDate  *time.Time
	EndDate    *time.Time
}

// ListOrders возвращает заказы, отфильтрованные по клиенту и периоду,
// по убыванию даты.
func (r *PostgresRepository) ListOrders(ctx context.Context, f OrdersFilter) ([]model.Order, error) {
	where := []string{"TRUE"}
	var args []any

	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("order_date <= $%d", len(args)))
	}

	sql := fmt.Sprintf(
		`SELECT `+orderColumns+` FROM orders WHERE %s ORDER BY order_date DESC, order_id DESC`,
		strings.Join(where, " AND "),
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	return collectOrders(rows)
}

// ListCustomerOrders возвращает последние заказы клиента.
func (r *PostgresRepository) ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE customer_id = $1
		 ORDER BY order_id DESC
		 LIMIT $2`,
		customerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select customer orders: %w", err)
	}

	return collectOrders(rows)
}

// RecentOrders возвращает последние заказы.
func (r *PostgresRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY order_id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select recent orders: %w", err)
	}

	return collectOrders(rows)
}

// UpdateOrderDate меняет дату начала размещения. Разрешено только пока заказ
// не обработан: проверка статуса и запись выполняются одним UPDATE.
func (r *PostgresRepository) UpdateOrderDate(ctx context.Context, orderID int64, date time.Time) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET order_date = $1 WHERE order_id = $2 AND status = $3`,
		date, orderID, model.OrderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("update order date: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedOrder(ctx, orderID)
	}
	return nil
}

// DeleteOrder отменяет необработанный заказ. Маркер и связи с площадками
// удаляются каскадно вместе с заказом.
func (r *PostgresRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE order_id = $1 AND status = $2`,
		orderID, model.OrderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissedOrder(ctx, orderID)
	}
	return nil
}

// classifyMissedOrder различает "заказ не найден" и "заказ уже обработан"
// после неуспешного охраняемого изменения.
func (r *PostgresRepository) classifyMissedOrder(ctx context.Context, orderID int64) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`,
		orderID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check order existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNotPending
}

// ProcessOrder — единственный переход pending → processed: статус, маркер и
// запись об обработке меняются в одной транзакции.
func (r *PostgresRepository) ProcessOrder(ctx context.Context, orderID, processorID int64) (*model.ProcessedOrder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2 AND status = $3`,
		model.OrderStatusProcessed, orderID, model.OrderStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, r.classifyMissedOrder(ctx, orderID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pending_orders WHERE order_id = $1`, orderID); err != nil {
		return nil, fmt.Errorf("delete pending marker: %w", err)
	}

	var processed model.ProcessedOrder
	err = tx.QueryRow(ctx,
		`INSERT INTO processed_orders (order_id, processor_id)
		 VALUES ($1, $2)
		 RETURNING order_id, processed_at, processor_id`,
		orderID, processorID,
	).Scan(&processed.OrderID, &processed.ProcessedAt, &processed.ProcessorID)
	if err != nil {
		return nil, fmt.Errorf("insert processed record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &processed, nil
}

// GetPaymentStatus классифицирует заказ для отображения. Статус заказа —
// основной источник; детальные записи служат проверкой согласованности,
// расхождение даёт UNKNOWN, а не значение по умолчанию.
func (r *PostgresRepository) GetPaymentStatus(ctx context.Context, orderID int64) (model.PaymentStatus, error) {
	var (
		status       model.OrderStatus
		hasPending   bool
		hasProcessed bool
	)
	err := r.pool.QueryRow(ctx,
		`SELECT o.status, t.order_id IS NOT NULL, p.order_id IS NOT NULL
		 FROM orders o
		 LEFT JOIN pending_orders t ON t.order_id = o.order_id
		 LEFT JOIN processed_orders p ON p.order_id = o.order_id
		 WHERE o.order_id = $1`,
		orderID,
	).Scan(&status, &hasPending, &hasProcessed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get payment status: %w", err)
	}

	switch {
	case status == model.OrderStatusProcessed && hasProcessed:
		return model.PaymentStatusProcessed, nil
	case status == model.OrderStatusPending && hasPending:
		return model.PaymentStatusPending, nil
	default:
		return model.PaymentStatusUnknown, nil
	}
}

// ListPendingOrders возвращает маркеры необработанных заказов.
func (r *PostgresRepository) ListPendingOrders(ctx context.Context, limit int) ([]model.PendingOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT order_id, substatus FROM pending_orders ORDER BY order_id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending orders: %w", err)
	}
	defer rows.Close()

	var pending []model.PendingOrder
	for rows.Next() {
		var p model.PendingOrder
		if err := rows.Scan(&p.OrderID, &p.Substatus); err != nil {
			return nil, fmt.Errorf("scan pending order: %w", err)
		}
		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return pending, nil
}

// ListProcessedOrders возвращает записи об обработке по убыванию времени.
func (r *PostgresRepository) ListProcessedOrders(ctx context.Context, limit int) ([]model.ProcessedOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT order_id, processed_at, processor_id
		 FROM processed_orders
		 ORDER BY processed_at DESC, order_id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select processed orders: %w", err)
	}
	defer rows.Close()

	var processed []model.ProcessedOrder
	for rows.Next() {
		var p model.ProcessedOrder
		if err := rows.Scan(&p.OrderID, &p.ProcessedAt, &p.ProcessorID); err != nil {
			return nil, fmt.Errorf("scan processed order: %w", err)
		}
		processed = append(processed, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return processed, nil
}

// AttachSpot прикрепляет площадку к заказу. Проверки статуса заказа нет:
// исправление состава разрешено и после обработки. Уникальность связи
// не гарантируется, повторный вызов создаёт дубликат.
func (r *PostgresRepository) AttachSpot(ctx context.Context, orderID, spotID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO spot_orders (order_id, spot_id) VALUES ($1, $2)`,
		orderID, spotID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return fmt.Errorf("attach spot: %w", err)
	}
	return nil
}

// DetachSpot открепляет площадку от заказа и возвращает число удалённых
// строк. Дубликаты связи удаляются все разом.
func (r *PostgresRepository) DetachSpot(ctx context.Context, orderID, spotID int64) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM spot_orders WHERE order_id = $1 AND spot_id = $2`,
		orderID, spotID,
	)
	if err != nil {
		return 0, fmt.Errorf("detach spot: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// OrdersMetrics содержит агрегированные показатели по заказам.
type OrdersMetrics struct {
	Total      int64   `json:"total"`
	AvgPrice   float64 `json:"avg_price"`
	LastPeriod int64   `json:"last_period"`
}

// GetOrdersMetrics возвращает агрегированные показатели по заказам
// за последние days дней.
func (r *PostgresRepository) GetOrdersMetrics(ctx context.Context, days int) (*OrdersMetrics, error) {
	var m OrdersMetrics

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(total), 0) FROM orders`,
	).Scan(&m.Total, &m.AvgPrice)
	if err != nil {
		return nil, fmt.Errorf("orders metrics: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_date >= CURRENT_DATE - $1::int`,
		days,
	).Scan(&m.LastPeriod)
	if err != nil {
		return nil, fmt.Errorf("orders last period: %w", err)
	}

	return &m, nil
}

// OrdersSummary возвращает последние заказы за период.
func (r *PostgresRepository) OrdersSummary(ctx context.Context, days, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE order_date >= CURRENT_DATE - $1::int
		 ORDER BY order_date DESC, order_id DESC
		 LIMIT $2`,
		days, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders summary: %w", err)
	}

	return collectOrders(rows)
}
