package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
)

// PostgresOrderStore stores orders in PostgreSQL
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Save(ctx context.Context, sub order.Submission) (*order.Order, error) {
	o := newOrder(sub)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("store: marshal items: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, customer_id, customer_name, customer_email, items, total_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID,
		o.CustomerID,
		o.CustomerName,
		o.CustomerEmail,
		items,
		o.TotalAmount.String(),
		o.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert order %s: %w", o.ID, err)
	}

	return o, nil
}

func (s *PostgresOrderStore) Get(ctx context.Context, orderID string) (*order.Order, error) {
	var (
		o     order.Order
		items []byte
		total string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT order_id, customer_id, customer_name, customer_email, items, total_amount, created_at
		 FROM orders WHERE order_id = $1`,
		orderID,
	).Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &items, &total, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get order %s: %w", orderID, err)
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("store: decode items: %w", err)
	}
	if o.TotalAmount, err = order.ParseMoney(total); err != nil {
		return nil, fmt.Errorf("store: parse total: %w", err)
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return &o, nil
}

// PostgresAuditStore appends audit records to the audit_records table
type PostgresAuditStore struct {
	db *sql.DB
}

func NewPostgresAuditStore(db *sql.DB) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

func (s *PostgresAuditStore) Put(ctx context.Context, rec audit.Record) error {
	details, err := json.Marshal(rec.OrderDetails)
	if err != nil {
		return fmt.Errorf("store: marshal order details: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_records (audit_id, order_id, event_type, order_details, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.AuditID,
		rec.OrderID,
		rec.EventType,
		details,
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("store: insert audit record %s: %w", rec.AuditID, err)
	}
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
