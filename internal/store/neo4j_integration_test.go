package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeo4jBackendIntegration(t *testing.T) {
	ctx := context.Background()

	uri := os.Getenv("TASKMANAGER_TEST_NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Skip if Neo4j not available
	b, err := NewNeo4jBackend(connectCtx, Neo4jOptions{
		URI:      uri,
		Username: "neo4j",
		Password: "password",
	})
	if err != nil {
		t.Skipf("Neo4j not available, skipping integration test: %v", err)
		return
	}
	t.Cleanup(func() { b.Close(ctx) })

	collection := Collection("integration_test")
	t.Cleanup(func() {
		session := b.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: b.database})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (c:Collection {name: $name}) DELETE c", map[string]any{"name": string(collection)})
	})

	t.Run("MissingCollection", func(t *testing.T) {
		_, err := b.Read(ctx, collection)
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})

	t.Run("WriteReplaces", func(t *testing.T) {
		require.NoError(t, b.Write(ctx, collection, []byte(`["alice"]`)))
		require.NoError(t, b.Write(ctx, collection, []byte(`["alice","bob"]`)))

		doc, err := b.Read(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, `["alice","bob"]`, string(doc))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, b.Ping(ctx))
	})
}
