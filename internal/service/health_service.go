package service

import (
	"context"

	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
)

// Store health states reported per source
const (
	StoreOK          = "ok"
	StoreDown        = "down"
	StoreUnavailable = "unavailable"
)

// HealthChecker pings one store
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var _ HealthChecker = (*database.DB)(nil)

// HealthService reports the state of both source stores
type HealthService interface {
	Check(ctx context.Context) map[models.Source]string
}

type healthService struct {
	stores map[models.Source]HealthChecker
}

// NewHealthService creates a health service. A source missing from
// stores was never opened and is reported as unavailable.
func NewHealthService(stores map[models.Source]HealthChecker) HealthService {
	return &healthService{stores: stores}
}

// Check pings every store
func (s *healthService) Check(ctx context.Context) map[models.Source]string {
	report := make(map[models.Source]string, 2)
	for _, source := range []models.Source{models.SourceChat, models.SourceWeb} {
		store, ok := s.stores[source]
		switch {
		case !ok || store == nil:
			report[source] = StoreUnavailable
		case store.HealthCheck(ctx) != nil:
			report[source] = StoreDown
		default:
			report[source] = StoreOK
		}
	}
	return report
}
