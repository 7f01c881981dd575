package repository

import (
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	postgresRepo "github.com/billforge/billforge/internal/repository/postgres"
)

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewSubscriptionEventRepository(db *postgres.DB, logger *logger.Logger) subscription.EventRepository {
	return postgresRepo.NewSubscriptionEventRepository(db, logger)
}
