package cli

import (
	"github.com/vvka-141/pgload/internal/config"
	"github.com/vvka-141/pgload/internal/db"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// resolveConnectionFromFlags resolves connection configuration from flags,
// environment variables and project config.
func resolveConnectionFromFlags(flags connectionFlags, projectCfg *config.ProjectConfig) (*pgload.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &db.CloudFlags{
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
	}

	return db.ResolveConnectionParams(
		flags.connection,
		granularFlags,
		cloudFlags,
		db.LoadFromEnvironment(),
		projectCfg,
	)
}

// logConnectionVerbose logs connection details. The password is never logged.
func logConnectionVerbose(logger pgload.Logger, connConfig *pgload.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	if connConfig.SSLCert != "" {
		logger.Verbose("  SSL Cert: %s", connConfig.SSLCert)
	}
	if connConfig.SSLKey != "" {
		logger.Verbose("  SSL Key: %s", connConfig.SSLKey)
	}
	if connConfig.SSLRootCert != "" {
		logger.Verbose("  SSL Root Cert: %s", connConfig.SSLRootCert)
	}
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}
