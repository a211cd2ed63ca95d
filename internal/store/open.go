package store

import (
	"context"
	"fmt"

	"github.com/taskmanager/taskmanager/internal/config"
)

// OpenBackend connects the backend selected by the storage configuration
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileBackend(cfg.File.Dir)
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendPostgres:
		return NewPostgresBackend(ctx, cfg.Postgres.DSN(), cfg.Postgres.MaxOpenConnections)
	case config.BackendMySQL:
		return NewMySQLBackend(ctx, cfg.MySQL.DSN, cfg.MySQL.MaxOpenConnections)
	case config.BackendS3:
		return NewS3Backend(ctx, S3Options{
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
	case config.BackendNeo4j:
		return NewNeo4jBackend(ctx, Neo4jOptions{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
