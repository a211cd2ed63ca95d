package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jOptions configures the Neo4j backend
type Neo4jOptions struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jBackend keeps each collection as the document property of a
// (:Collection {name}) node
type Neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jBackend connects to Neo4j and ensures the name constraint exists
func NewNeo4jBackend(ctx context.Context, opts Neo4jOptions) (*Neo4jBackend, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("Neo4j URI is required")
	}

	auth := neo4j.BasicAuth(opts.Username, opts.Password, "")
	driver, err := neo4j.NewDriverWithContext(opts.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	b := &Neo4jBackend{
		driver:   driver,
		database: opts.Database,
	}

	if err := b.initializeSchema(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return b, nil
}

func (b *Neo4jBackend) initializeSchema(ctx context.Context) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: b.database,
	})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		"CREATE CONSTRAINT collection_name IF NOT EXISTS FOR (c:Collection) REQUIRE c.name IS UNIQUE", nil)
	if err != nil {
		return fmt.Errorf("failed to create collection constraint: %w", err)
	}
	return nil
}

func (b *Neo4jBackend) Name() string {
	return "neo4j"
}

func (b *Neo4jBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: b.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MATCH (c:Collection {name: $name}) RETURN c.document AS document",
		map[string]any{"name": string(c)})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", c, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to read collection %s: %w", c, err)
		}
		return nil, ErrCollectionNotFound
	}

	record := result.Record()
	value, ok := record.Get("document")
	if !ok || value == nil {
		return nil, ErrCollectionNotFound
	}
	document, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("collection %s document has unexpected type %T", c, value)
	}

	return []byte(document), nil
}

func (b *Neo4jBackend) Write(ctx context.Context, c Collection, document []byte) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: b.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MERGE (c:Collection {name: $name})
		SET c.document = $document,
		    c.updated_at = $updated_at
	`, map[string]any{
		"name":       string(c),
		"document":   string(document),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", c, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", c, err)
	}

	return nil
}

func (b *Neo4jBackend) Ping(ctx context.Context) error {
	return b.driver.VerifyConnectivity(ctx)
}

func (b *Neo4jBackend) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}
