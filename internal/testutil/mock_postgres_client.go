package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/postgres"
)

// MockPostgresClient satisfies postgres.IClient by running the function
// directly, no transaction semantics
type MockPostgresClient struct{}

var _ postgres.IClient = (*MockPostgresClient)(nil)

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
