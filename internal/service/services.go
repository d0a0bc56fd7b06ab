package service

import (
	"github.com/campus-notice-collector/internal/cache"
	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/rs/zerolog"
)

// Services holds the services behind the query API
type Services struct {
	Query  QueryService
	Health HealthService
}

// NewServices creates the query API services. Either store may be nil
// when it could not be opened; queries then answer from the other one.
func NewServices(chat, web *repository.Repositories, c cache.Cache, cfg *config.Config, log zerolog.Logger) *Services {
	stores := make(map[models.Source]*repository.Repositories, 2)
	if chat != nil {
		stores[models.SourceChat] = chat
	}
	if web != nil {
		stores[models.SourceWeb] = web
	}

	return &Services{
		Query: newQueryService(stores, c, cfg.Redis.TTL, log),
	}
}
