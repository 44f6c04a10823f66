// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound возвращается, если запрошенная сущность не найдена.
var (
	ErrNotFound = errors.New("not found")
	// ErrNotPending возвращается при попытке изменить или отменить заказ,
	// который уже обработан.
	ErrNotPending = errors.New("order is not pending")
	// ErrCustomerHasOrders возвращается при попытке удалить клиента,
	// у которого есть заказы.
	ErrCustomerHasOrders = errors.New("customer has orders")
	// ErrCustomerExists возвращается при попытке создать клиента
	// с уже занятым email.
	ErrCustomerExists = errors.New("customer already exists")
	// ErrAccountExists возвращается при попытке создать учётную запись
	// с уже занятым email.
	ErrAccountExists = errors.New("account already exists")
	// ErrNoCustomer возвращается, если заказ ссылается на несуществующего клиента.
	ErrNoCustomer = errors.New("customer does not exist")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД
// через миграции. Пул соединений один на процесс, обработчики его разделяют.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
