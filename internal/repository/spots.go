package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spotlight/spotlight-backend/internal/model"
)

// ErrNoEditableFields возвращается, если частичное обновление не содержит
// ни одного редактируемого поля.
var ErrNoEditableFields = errors.New("no editable fields provided")

const spotColumns = `spot_id, price, contact_tel, est_view_per_month, monthly_rent_cost,
	 end_time_of_current_order, status, address, longitude, latitude, image_url`

// spotColumnByField отображает имена полей запроса на колонки таблицы.
// Это и есть allow-list частичного обновления площадки.
var spotColumnByField = map[string]string{
	"price":                 "price",
	"contactTel":            "contact_tel",
	"estViewPerMonth":       "est_view_per_month",
	"monthlyRentCost":       "monthly_rent_cost",
	"endTimeOfCurrentOrder": "end_time_of_current_order",
	"status":                "status",
	"address":               "address",
	"longitude":             "longitude",
	"latitude":              "latitude",
	"imageURL":              "image_url",
}

var spotSortColumns = map[string]string{
	"spotID": "spot_id",
	"price":  "price",
	"views":  "est_view_per_month",
	"status": "status",
}

func scanSpot(row pgx.Row) (*model.Spot, error) {
	var s model.Spot
	err := row.Scan(
		&s.ID, &s.Price, &s.ContactTel, &s.EstViewPerMonth, &s.MonthlyRentCost,
		&s.EndTimeOfCurrentOrder, &s.Status, &s.Address, &s.Longitude, &s.Latitude, &s.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSpots(rows pgx.Rows) ([]model.Spot, error) {
	defer rows.Close()

	var spots []model.Spot
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		spots = append(spots, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return spots, nil
}

// BBox — прямоугольник координат для фильтра списка площадок.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// SpotsFilter описывает фильтры и сортировку списка площадок.
// Statuses должны быть проверены на допустимость до вызова.
type SpotsFilter struct {
	Statuses []string
	BBox     *BBox
	Query    string
	SortBy   string
	Desc     bool
	Limit    int
	Offset   int
}

// ListSpots возвращает площадки с координатами, отфильтрованные по статусу,
// прямоугольнику координат и подстроке адреса.
func (r *PostgresRepository) ListSpots(ctx context.Context, f SpotsFilter) ([]model.Spot, error) {
	where := []string{"latitude IS NOT NULL", "longitude IS NOT NULL"}
	var args []any

	if len(f.Statuses) > 0 {
		placeholders := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ",")+")")
	}

	if f.BBox != nil {
		args = append(args, f.BBox.MinLon, f.BBox.MaxLon)
		where = append(where, fmt.Sprintf("longitude BETWEEN $%d AND $%d", len(args)-1, len(args)))
		args = append(args, f.BBox.MinLat, f.BBox.MaxLat)
		where = append(where, fmt.Sprintf("latitude BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("address ILIKE $%d", len(args)))
	}

	sortCol, ok := spotSortColumns[f.SortBy]
	if !ok {
		sortCol = "spot_id"
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}

	args = append(args, f.Limit, f.Offset)
	sql := fmt.Sprintf(
		`SELECT `+spotColumns+` FROM spots WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), sortCol, direction, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select spots: %w", err)
	}

	return collectSpots(rows)
}

// GetSpot возвращает площадку по идентификатору.
func (r *PostgresRepository) GetSpot(ctx context.Context, id int64) (*model.Spot, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+spotColumns+` FROM spots WHERE spot_id = $1`,
		id,
	)

	s, err := scanSpot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get spot: %w", err)
	}

	return s, nil
}

// CreateSpot создаёт новую площадку и возвращает её идентификатор.
func (r *PostgresRepository) CreateSpot(ctx context.Context, s *model.Spot) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO spots (price, contact_tel, est_view_per_month, monthly_rent_cost,
		                    end_time_of_current_order, status, address, longitude, latitude, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING spot_id`,
		s.Price, s.ContactTel, s.EstViewPerMonth, s.MonthlyRentCost,
		s.EndTimeOfCurrentOrder, s.Status, s.Address, s.Longitude, s.Latitude, s.ImageURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create spot: %w", err)
	}
	return id, nil
}

// UpdateSpotFields выполняет частичное обновление площадки: пишутся только
// переданные поля из allow-list, остальные ключи игнорируются.
func (r *PostgresRepository) UpdateSpotFields(ctx context.Context, id int64, fields map[string]any) error {
	var sets []string
	var args []any

	for field, col := range spotColumnByField {
		value, ok := fields[field]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if len(sets) == 0 {
		return ErrNoEditableFields
	}

	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE spots SET %s WHERE spot_id = $%d`, strings.Join(sets, ", "), len(args))

	cmdTag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update spot: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSpotStatus меняет статус площадки и возвращает обновлённую запись.
func (r *PostgresRepository) UpdateSpotStatus(ctx context.Context, id int64, status model.SpotStatus) (*model.Spot, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE spots SET status = $1 WHERE spot_id = $2 RETURNING `+spotColumns,
		status, id,
	)

	s, err := scanSpot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update spot status: %w", err)
	}

	return s, nil
}

// DeleteSpot удаляет площадку. Ссылочных проверок нет: связи spot_orders
// могут остаться висячими, это ожидаемое поведение.
func (r *PostgresRepository) DeleteSpot(ctx context.Context, id int64) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM spots WHERE spot_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete spot: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// SpotsNear возвращает площадки в радиусе radiusKM километров от точки,
// по возрастанию расстояния. Расстояние считается по формуле гаверсинусов
// на стороне БД.
func (r *PostgresRepository) SpotsNear(ctx context.Context, lat, lon, radiusKM float64, status string, limit int) ([]model.Spot, error) {
	// Аргумент acos зажимается в [-1, 1]: из-за погрешности плавающей точки
	// выражение может чуть выходить за диапазон, и acos падает.
	inner := `SELECT ` + spotColumns + `,
		 (6371 * acos(LEAST(1, GREATEST(-1,
		     cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2))
		     + sin(radians($1)) * sin(radians(latitude))
		 )))) AS distance_km
		 FROM spots
		 WHERE latitude IS NOT NULL AND longitude IS NOT NULL`

	args := []any{lat, lon}
	if status != "" {
		args = append(args, status)
		inner += fmt.Sprintf(" AND status = $%d", len(args))
	}

	args = append(args, radiusKM, limit)
	sql := fmt.Sprintf(
		`SELECT * FROM (%s) t WHERE distance_km <= $%d ORDER BY distance_km ASC LIMIT $%d`,
		inner, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select spots near: %w", err)
	}
	defer rows.Close()

	var spots []model.Spot
	for rows.Next() {
		var s model.Spot
		var distance float64
		err := rows.Scan(
			&s.ID, &s.Price, &s.ContactTel, &s.EstViewPerMonth, &s.MonthlyRentCost,
			&s.EndTimeOfCurrentOrder, &s.Status, &s.Address, &s.Longitude, &s.Latitude, &s.ImageURL,
			&distance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		s.DistanceKM = &distance
		spots = append(spots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return spots, nil
}

// SearchSpotsByAddress выполняет полнотекстовый поиск по адресу с запасным
// поиском по подстроке в одном предикате.
func (r *PostgresRepository) SearchSpotsByAddress(ctx context.Context, q string, limit int) ([]model.Spot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+spotColumns+`
		 FROM spots
		 WHERE to_tsvector('simple', address) @@ websearch_to_tsquery('simple', $1)
		    OR address ILIKE $2
		 LIMIT $3`,
		q, "%"+q+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search spots: %w", err)
	}

	return collectSpots(rows)
}

// SpotsMetrics содержит агрегированные показатели по площадкам.
type SpotsMetrics struct {
	Total     int64 `json:"total"`
	InUse     int64 `json:"in_use"`
	Free      int64 `json:"free"`
	WithIssue int64 `json:"with_issue"`
}

// GetSpotsMetrics возвращает агрегированные показатели по площадкам.
func (r *PostgresRepository) GetSpotsMetrics(ctx context.Context) (*SpotsMetrics, error) {
	var m SpotsMetrics

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'inuse'),
		        COUNT(*) FILTER (WHERE status = 'free'),
		        COUNT(*) FILTER (WHERE status = 'w.issue')
		 FROM spots`,
	).Scan(&m.Total, &m.InUse, &m.Free, &m.WithIssue)
	if err != nil {
		return nil, fmt.Errorf("spots metrics: %w", err)
	}

	return &m, nil
}

// SpotsSummary возвращает последние площадки для сводки.
func (r *PostgresRepository) SpotsSummary(ctx context.Context, limit int) ([]model.Spot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+spotColumns+` FROM spots ORDER BY spot_id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select spots summary: %w", err)
	}

	return collectSpots(rows)
}

// PriceSummary — сводка цен после массового изменения.
type PriceSummary struct {
	Count    int64   `json:"n"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	AvgPrice float64 `json:"avg_price"`
}

// BulkPriceUpdate изменяет цены площадок на percent процентов, опционально
// только для заданного статуса, и возвращает сводку цен.
func (r *PostgresRepository) BulkPriceUpdate(ctx context.Context, percent float64, status string) (*PriceSummary, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if status != "" {
		_, err = tx.Exec(ctx,
			`UPDATE spots SET price = ROUND(price * (1 + $1 / 100), 2) WHERE status = $2`,
			percent, status,
		)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE spots SET price = ROUND(price * (1 + $1 / 100), 2)`,
			percent,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("bulk price update: %w", err)
	}

	var summary PriceSummary
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(MIN(price), 0), COALESCE(MAX(price), 0), COALESCE(AVG(price), 0)
		 FROM spots`,
	).Scan(&summary.Count, &summary.MinPrice, &summary.MaxPrice, &summary.AvgPrice)
	if err != nil {
		return nil, fmt.Errorf("price summary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &summary, nil
}
