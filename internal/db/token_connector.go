package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// TokenBasedConnector connects to cloud-hosted PostgreSQL (AWS IAM, Azure
// Entra ID) using a token from a TokenProvider as the password.
// A fresh token is requested on every connect attempt.
type TokenBasedConnector struct {
	config   *pgload.ConnectionConfig
	provider TokenProvider
	settings connectorSettings
}

// NewTokenBasedConnector creates a connector that authenticates with provider.
func NewTokenBasedConnector(config *pgload.ConnectionConfig, provider TokenProvider, opts ...ConnectorOption) *TokenBasedConnector {
	return &TokenBasedConnector{config: config, provider: provider, settings: newConnectorSettings(opts)}
}

// Connect opens and pings a pool.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return c.settings.openPool(ctx, c.config, func(ctx context.Context, poolConfig *pgxpool.Config) error {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire token from %s: %w: %w", c.provider, pgload.ErrConnectionFailed, err)
		}
		if left := time.Until(expiresOn); left < tokenExpiryWarning {
			c.settings.logger.Info("Warning: %s token expires in %v", c.provider, left.Round(time.Second))
		}
		poolConfig.ConnConfig.Password = token
		return nil
	})
}
