package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector.
//
// Implements io.Closer: call Close after the pool is closed to release the dialer.
type GoogleCloudSQLConnector struct {
	config   *pgload.ConnectionConfig
	settings connectorSettings

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector requires GoogleInstance ("project:region:instance") and a username.
func NewGoogleCloudSQLConnector(config *pgload.ConnectionConfig, opts ...ConnectorOption) (*GoogleCloudSQLConnector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgload.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username (-U): %w", pgload.ErrInvalidConfig)
	}
	return &GoogleCloudSQLConnector{config: config, settings: newConnectorSettings(opts)}, nil
}

// Connect dials the instance through the connector; TLS is handled by the dialer.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := c.ensureDialer(ctx)
	if err != nil {
		return nil, err
	}

	cfg := *c.config
	cfg.SSLMode = "disable"
	cfg.Password = ""
	return c.settings.openPool(ctx, &cfg, func(_ context.Context, poolConfig *pgxpool.Config) error {
		poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.Dial(ctx, c.config.GoogleInstance)
		}
		return nil
	})
}

func (c *GoogleCloudSQLConnector) ensureDialer(ctx context.Context) (*cloudsqlconn.Dialer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialer != nil {
		return c.dialer, nil
	}
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", pgload.ErrConnectionFailed, err)
	}
	c.dialer = dialer
	return dialer, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
