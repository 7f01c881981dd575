package service

import (
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/catalog"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/notifier"
	"github.com/billforge/billforge/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	SubRepo      subscription.Repository
	SubEventRepo subscription.EventRepository

	// Boundaries
	CatalogLookup catalog.Lookup
	Notifier      notifier.Notifier
}
