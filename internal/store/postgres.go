package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/taskmanager/taskmanager/internal/store/migrations"
)

// CollectionSchema represents the collections table: one row per collection.
// Document is bound as a plain text literal; the jsonb column casts it on insert.
type CollectionSchema struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	Name      string    `bun:"name,pk" json:"name"`
	Document  string    `bun:"document,notnull" json:"document"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// PostgresBackend implements Backend using PostgreSQL
type PostgresBackend struct {
	db *bun.DB
}

// NewPostgresBackend connects to PostgreSQL and applies pending migrations
func NewPostgresBackend(ctx context.Context, dsn string, maxConnections int) (*PostgresBackend, error) {
	if maxConnections <= 0 {
		maxConnections = 10
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	b := NewPostgresBackendFromDB(bun.NewDB(sqldb, pgdialect.New()))
	if err := b.Migrate(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackendFromDB wraps an existing connection without migrating
func NewPostgresBackendFromDB(db *bun.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Migrate brings the collections table up to date
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, b.db.DB, "postgres"); err != nil {
		return fmt.Errorf("failed to migrate postgres schema: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Name() string {
	return "postgres"
}

func (b *PostgresBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	var schema CollectionSchema
	err := b.db.NewSelect().
		Model(&schema).
		Where("name = ?", string(c)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to select collection %s: %w", c, err)
	}

	return []byte(schema.Document), nil
}

// Write upserts the collection row in a single statement
func (b *PostgresBackend) Write(ctx context.Context, c Collection, document []byte) error {
	schema := &CollectionSchema{
		Name:      string(c),
		Document:  string(document),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := b.db.NewInsert().
		Model(schema).
		On("CONFLICT (name) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert collection %s: %w", c, err)
	}

	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *PostgresBackend) Close(ctx context.Context) error {
	return b.db.Close()
}
