package region

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
	"github.com/arsipak/admin-bff-go/internal/infra/cache"
	"github.com/arsipak/admin-bff-go/internal/infra/observability"
)

// Manager owns the server-held picker sessions. Each open picker is one
// Selector in a TTL cache; idle pickers expire on their own, interacting
// with one keeps it alive.
type Manager struct {
	service  *Service
	sessions *cache.InMemory[*Selector]
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewManager wires the picker session manager.
func NewManager(service *Service, sessions *cache.InMemory[*Selector], logger *zap.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{service: service, sessions: sessions, logger: logger, metrics: metrics}
}

// Open creates a picker session for the caller and loads the province
// options. Returns the session id and the initial view.
func (m *Manager) Open(ctx context.Context, token string) (string, View, error) {
	id := uuid.NewString()
	sel := NewSelector(m.service.Fetcher(token), func(path domain.RegionPath) {
		if path == nil {
			m.logger.Debug("picker: selection cleared", zap.String("picker_id", id))
			return
		}
		m.logger.Debug("picker: path committed",
			zap.String("picker_id", id),
			zap.String("path", path.DisplayName()),
		)
	})

	if err := sel.Open(ctx); err != nil {
		// Keep the session; the picker surfaces the error inline with a
		// retry affordance instead of dying.
		m.logger.Warn("picker: initial load failed", zap.String("picker_id", id), zap.Error(err))
	}

	m.sessions.Set(id, sel)
	m.metrics.SetPickerSessions(m.sessions.Len())
	return id, sel.Snapshot(), nil
}

// Get returns the live selector for a picker session.
func (m *Manager) Get(id string) (*Selector, error) {
	sel, ok := m.sessions.Get(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "picker session", ID: id}
	}
	m.sessions.Touch(id)
	return sel, nil
}

// Close discards a picker session.
func (m *Manager) Close(id string) {
	m.sessions.Delete(id)
	m.metrics.SetPickerSessions(m.sessions.Len())
}
