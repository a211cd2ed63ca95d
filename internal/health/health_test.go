package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskmanager/taskmanager/internal/store"
)

type stubChecker struct {
	name     string
	critical bool
	err      error
}

func (s stubChecker) Name() string                          { return s.name }
func (s stubChecker) IsCritical() bool                      { return s.critical }
func (s stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func TestStartupHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("PassesWithHealthyStore", func(t *testing.T) {
		m := NewManager(zap.NewNop())
		m.AddChecker(NewStoreHealthChecker(store.NewMemoryBackend()))
		m.AddChecker(NewConfigHealthChecker(func() error { return nil }))

		require.NoError(t, m.StartupHealthCheck(ctx))
	})

	t.Run("NonCriticalFailureIsTolerated", func(t *testing.T) {
		m := NewManager(zap.NewNop())
		m.AddChecker(stubChecker{name: "optional", err: errors.New("degraded")})

		assert.NoError(t, m.StartupHealthCheck(ctx))
	})

	t.Run("CriticalFailureFails", func(t *testing.T) {
		m := NewManager(zap.NewNop())
		m.AddChecker(NewStoreHealthChecker(nil))

		err := m.StartupHealthCheck(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store")
	})
}

func TestRuntimeHealthCheck(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.AddChecker(NewStoreHealthChecker(store.NewMemoryBackend()))
	m.AddChecker(NewConfigHealthChecker(func() error { return errors.New("bad port") }))

	results := m.RuntimeHealthCheck(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results["store"])
	assert.EqualError(t, results["configuration"], "bad port")
}
