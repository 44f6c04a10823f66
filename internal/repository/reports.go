package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spotlight/spotlight-backend/internal/model"
)

const reportColumns = `report_id, spot_id, content, status, created_at`

func scanReport(row pgx.Row) (*model.Report, error) {
	var rep model.Report
	if err := row.Scan(&rep.ID, &rep.SpotID, &rep.Content, &rep.Status, &rep.CreatedAt); err != nil {
		return nil, err
	}
	return &rep, nil
}

// GetReport возвращает обращение по идентификатору.
func (r *PostgresRepository) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE report_id = $1`,
		id,
	)

	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	return rep, nil
}

// ListReports возвращает обращения, опционально только с заданным статусом.
func (r *PostgresRepository) ListReports(ctx context.Context, status string, limit int) ([]model.Report, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if status != "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+reportColumns+`
			 FROM reports
			 WHERE status = $1
			 ORDER BY report_id DESC
			 LIMIT $2`,
			status, limit,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+reportColumns+` FROM reports ORDER BY report_id DESC LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reports, nil
}

// CreateReport создаёт обращение и возвращает его идентификатор.
func (r *PostgresRepository) CreateReport(ctx context.Context, rep *model.Report) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reports (spot_id, content, status)
		 VALUES ($1, $2, $3)
		 RETURNING report_id`,
		rep.SpotID, rep.Content, rep.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	return id, nil
}

// UpdateReportStatus меняет статус обращения.
func (r *PostgresRepository) UpdateReportStatus(ctx context.Context, id int64, status model.ReportStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE reports SET status = $1 WHERE report_id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReport удаляет обращение без ссылочных проверок.
func (r *PostgresRepository) DeleteReport(ctx context.Context, id int64) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE report_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete report: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
