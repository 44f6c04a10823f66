package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spotlight/spotlight-backend/internal/model"
)

// SpotStatusCount — количество площадок в одном статусе.
type SpotStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"cnt"`
}

// OwnerMetrics — верхнеуровневые показатели для владельца компании.
type OwnerMetrics struct {
	SpotCount     int64             `json:"spot_count"`
	CustomerCount int64             `json:"customer_count"`
	OrderCount    int64             `json:"order_count"`
	ReportCount   int64             `json:"report_count"`
	AccountCount  int64             `json:"account_count"`
	SpotStatus    []SpotStatusCount `json:"spot_status"`
}

// GetOwnerMetrics возвращает количество сущностей каждого типа и разбивку
// площадок по статусам. Запросы независимые, без общего снапшота.
func (r *PostgresRepository) GetOwnerMetrics(ctx context.Context) (*OwnerMetrics, error) {
	var m OwnerMetrics

	counts := []struct {
		table string
		dst   *int64
	}{
		{"spots", &m.SpotCount},
		{"customers", &m.CustomerCount},
		{"orders", &m.OrderCount},
		{"reports", &m.ReportCount},
		{"accounts", &m.AccountCount},
	}

	for _, c := range counts {
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dst)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM spots GROUP BY status ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("spot status breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc SpotStatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan spot status: %w", err)
		}
		m.SpotStatus = append(m.SpotStatus, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &m, nil
}

// SearchResult — результат сквозного поиска по всем сущностям.
type SearchResult struct {
	Spots     []model.Spot     `json:"spots"`
	Customers []model.Customer `json:"customers"`
	Orders    []model.Order    `json:"orders"`
}

// GlobalSearch ищет по площадкам, клиентам и заказам одновременно.
// Числовой запрос трактуется как идентификатор заказа или клиента.
func (r *PostgresRepository) GlobalSearch(ctx context.Context, q string, perEntityLimit int) (*SearchResult, error) {
	res := &SearchResult{
		Spots:     []model.Spot{},
		Customers: []model.Customer{},
		Orders:    []model.Order{},
	}

	spots, err := r.SearchSpotsByAddress(ctx, q, perEntityLimit)
	if err != nil {
		return nil, err
	}
	if spots != nil {
		res.Spots = spots
	}

	customerRows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+`
		 FROM customers
		 WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR company_name ILIKE $1
		 LIMIT $2`,
		"%"+q+"%", perEntityLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer customerRows.Close()

	for customerRows.Next() {
		c, err := scanCustomer(customerRows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		res.Customers = append(res.Customers, *c)
	}
	if err := customerRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if id, err := strconv.ParseInt(q, 10, 64); err == nil {
		orderRows, err := r.pool.Query(ctx,
			`SELECT `+orderColumns+`
			 FROM orders
			 WHERE order_id = $1 OR customer_id = $1
			 LIMIT $2`,
			id, perEntityLimit,
		)
		if err != nil {
			return nil, fmt.Errorf("search orders by id: %w", err)
		}
		orders, err := collectOrders(orderRows)
		if err != nil {
			return nil, err
		}
		if orders != nil {
			res.Orders = orders
		}
	} else {
		orderRows, err := r.pool.Query(ctx,
			`SELECT `+orderColumns+`
			 FROM orders
			 WHERE order_date::text ILIKE $1
			 LIMIT $2`,
			"%"+q+"%", perEntityLimit,
		)
		if err != nil {
			return nil, fmt.Errorf("search orders by date: %w", err)
		}
		orders, err := collectOrders(orderRows)
		if err != nil {
			return nil, err
		}
		if orders != nil {
			res.Orders = orders
		}
	}

	return res, nil
}
