package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgload/internal/logging"
	"github.com/vvka-141/pgload/internal/retry"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// Connection pool configuration. Loads are sequential, so a small pool suffices.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute
)

// ConnectorOption configures connectors built by NewConnector.
type ConnectorOption func(*connectorSettings)

type connectorSettings struct {
	logger   pgload.Logger
	executor *retry.Executor
}

// WithLogger routes server notices and retry messages to logger.
func WithLogger(logger pgload.Logger) ConnectorOption {
	return func(s *connectorSettings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetryExecutor replaces the default connect retry policy.
func WithRetryExecutor(executor *retry.Executor) ConnectorOption {
	return func(s *connectorSettings) {
		if executor != nil {
			s.executor = executor
		}
	}
}

func newConnectorSettings(opts []ConnectorOption) connectorSettings {
	s := connectorSettings{
		logger: logging.NewNullLogger(),
		executor: retry.NewExecutor(
			retry.NewPostgreSQLErrorClassifier(),
			retry.NewExponentialBackoff(pgload.DefaultRetryMaxAttempts,
				retry.WithInitialDelay(pgload.DefaultRetryInitialDelay),
				retry.WithMaxDelay(pgload.DefaultRetryMaxDelay),
			),
		),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.executor = s.executor.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		s.logger.Verbose("Connect attempt %d failed (%v), retrying in %s", attempt+1, err, delay.Round(time.Millisecond))
	})
	return s
}

func (s connectorSettings) configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	logger := s.logger
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// openPool builds a pool for cfg and pings it, retrying transient failures.
// prepare runs on every attempt before the pool is created.
func (s connectorSettings) openPool(ctx context.Context, cfg *pgload.ConnectionConfig, prepare func(context.Context, *pgxpool.Config) error) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := s.executor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(cfg))
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w: %w", pgload.ErrInvalidConfig, err)
		}
		s.configurePool(poolConfig)
		if prepare != nil {
			if err := prepare(ctx, poolConfig); err != nil {
				return err
			}
		}

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// StandardConnector connects with username and password, retrying transient failures.
type StandardConnector struct {
	config   *pgload.ConnectionConfig
	settings connectorSettings
}

// NewStandardConnector creates a StandardConnector.
func NewStandardConnector(config *pgload.ConnectionConfig, opts ...ConnectorOption) *StandardConnector {
	return &StandardConnector{config: config, settings: newConnectorSettings(opts)}
}

// Connect opens and pings a pool.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return c.settings.openPool(ctx, c.config, nil)
}

// NewConnector returns the Connector matching config.AuthMethod.
func NewConnector(config *pgload.ConnectionConfig, opts ...ConnectorOption) (pgload.Connector, error) {
	switch config.AuthMethod {
	case pgload.AuthMethodStandard:
		return NewStandardConnector(config, opts...), nil
	case pgload.AuthMethodAWSIAM:
		provider, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", config.Host, config.Port), config.AWSRegion, config.Username)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, provider, opts...), nil
	case pgload.AuthMethodAzureEntraID:
		provider, err := newAzureTokenProvider(config)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, provider, opts...), nil
	case pgload.AuthMethodGoogleIAM:
		connector, err := NewGoogleCloudSQLConnector(config, opts...)
		if err != nil {
			return nil, err
		}
		return connector, nil
	default:
		return nil, fmt.Errorf("auth method %v: %w", config.AuthMethod, pgload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds a hint for the common failure causes and marks the
// error as ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	msg := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "actively refused"):
		hint = fmt.Sprintf("connection refused to %s (is PostgreSQL running? try: pg_isready -h %s -p %d)", addr, host, port)
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "no host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(msg, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q (check $PGPASSWORD, .env or the connection string)", database)
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist", database)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		hint = fmt.Sprintf("connection timed out to %s", addr)
	case strings.Contains(msg, "ssl") || strings.Contains(msg, "tls"):
		hint = "SSL/TLS negotiation failed (check --sslmode and the certificate paths in pgload.yaml)"
	case strings.Contains(msg, "too many connections"):
		hint = fmt.Sprintf("too many connections to database %q", database)
	default:
		hint = fmt.Sprintf("failed to connect to %s", addr)
	}
	return fmt.Errorf("%s: %w: %w", hint, pgload.ErrConnectionFailed, err)
}
