package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"

	"github.com/taskmanager/taskmanager/internal/store/migrations"
)

const (
	mysqlSelectCollection = `SELECT document FROM collections WHERE name = ?`
	mysqlUpsertCollection = `INSERT INTO collections (name, document, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE document = VALUES(document), updated_at = VALUES(updated_at)`
)

// MySQLBackend implements Backend using MySQL
type MySQLBackend struct {
	db *sql.DB
}

// NewMySQLBackend connects to MySQL and applies pending migrations
func NewMySQLBackend(ctx context.Context, dsn string, maxConnections int) (*MySQLBackend, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	if maxConnections > 0 {
		db.SetMaxOpenConns(maxConnections)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	b := NewMySQLBackendFromDB(db)
	if err := b.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// NewMySQLBackendFromDB wraps an existing connection without migrating
func NewMySQLBackendFromDB(db *sql.DB) *MySQLBackend {
	return &MySQLBackend{db: db}
}

// Migrate brings the collections table up to date
func (b *MySQLBackend) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, b.db, "mysql"); err != nil {
		return fmt.Errorf("failed to migrate mysql schema: %w", err)
	}
	return nil
}

func (b *MySQLBackend) Name() string {
	return "mysql"
}

func (b *MySQLBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	var document string
	err := b.db.QueryRowContext(ctx, mysqlSelectCollection, string(c)).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to select collection %s: %w", c, err)
	}
	return []byte(document), nil
}

func (b *MySQLBackend) Write(ctx context.Context, c Collection, document []byte) error {
	_, err := b.db.ExecContext(ctx, mysqlUpsertCollection, string(c), string(document), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert collection %s: %w", c, err)
	}
	return nil
}

func (b *MySQLBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *MySQLBackend) Close(ctx context.Context) error {
	return b.db.Close()
}
