package health

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/taskmanager/taskmanager/internal/store"
)

// Checker is a single dependency that can report its health
type Checker interface {
	Name() string
	IsCritical() bool
	HealthCheck(ctx context.Context) error
}

// Manager runs a set of health checkers
type Manager struct {
	checkers []Checker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a new health manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		checkers: make([]Checker, 0),
		logger:   logger,
	}
}

// AddChecker adds a health checker to the manager
func (h *Manager) AddChecker(checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// StartupHealthCheck performs critical health checks that must pass for startup
func (h *Manager) StartupHealthCheck(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var criticalFailures []error

	for _, checker := range h.checkers {
		err := checker.HealthCheck(ctx)
		if err != nil {
			if checker.IsCritical() {
				criticalFailures = append(criticalFailures, fmt.Errorf("%s: %w", checker.Name(), err))
				h.logger.Error("Critical service health check failed",
					zap.String("service", checker.Name()),
					zap.Error(err))
			} else {
				h.logger.Warn("Non-critical service health check failed",
					zap.String("service", checker.Name()),
					zap.Error(err))
			}
			continue
		}
		h.logger.Info("Service health check passed",
			zap.String("service", checker.Name()),
			zap.Bool("critical", checker.IsCritical()))
	}

	if len(criticalFailures) > 0 {
		return fmt.Errorf("critical services failed health check: %v", criticalFailures)
	}

	return nil
}

// RuntimeHealthCheck performs health checks during runtime
func (h *Manager) RuntimeHealthCheck(ctx context.Context) map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	results := make(map[string]error)
	for _, checker := range h.checkers {
		results[checker.Name()] = checker.HealthCheck(ctx)
	}

	return results
}

// StoreHealthChecker checks that the collection backend is reachable
type StoreHealthChecker struct {
	backend store.Backend
}

// NewStoreHealthChecker creates a store health checker
func NewStoreHealthChecker(backend store.Backend) *StoreHealthChecker {
	return &StoreHealthChecker{backend: backend}
}

func (s *StoreHealthChecker) HealthCheck(ctx context.Context) error {
	if s.backend == nil {
		return fmt.Errorf("store backend is nil")
	}
	return s.backend.Ping(ctx)
}

func (s *StoreHealthChecker) IsCritical() bool {
	return true
}

func (s *StoreHealthChecker) Name() string {
	return "store"
}

// ConfigHealthChecker checks configuration validity
type ConfigHealthChecker struct {
	validate func() error
}

// NewConfigHealthChecker creates a config health checker from a validation func
func NewConfigHealthChecker(validate func() error) *ConfigHealthChecker {
	return &ConfigHealthChecker{validate: validate}
}

func (c *ConfigHealthChecker) HealthCheck(ctx context.Context) error {
	if c.validate == nil {
		return fmt.Errorf("configuration is nil")
	}
	return c.validate()
}

func (c *ConfigHealthChecker) IsCritical() bool {
	return true
}

func (c *ConfigHealthChecker) Name() string {
	return "configuration"
}
