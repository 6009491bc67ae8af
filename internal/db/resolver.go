package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgload/internal/config"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is deliberately not a flag: use $PGPASSWORD, .env or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no host, port, user or sslmode flag was given.
// Database is excluded: -d may narrow a connection string to another database.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a cloud authentication method.
type CloudFlags struct {
	AWS            bool
	AWSRegion      string
	Google         bool
	GoogleInstance string
	Azure          bool
	AzureTenantID  string
	AzureClientID  string
}

func (c *CloudFlags) count() int {
	n := 0
	for _, on := range []bool{c.AWS, c.Google, c.Azure} {
		if on {
			n++
		}
	}
	return n
}

// EnvVars represents PostgreSQL and cloud SDK environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads the variables listed in EnvVars.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters with this precedence:
//
//  1. --connection flag
//  2. DATABASE_URL, when no granular flag is set
//  3. granular flags, then PG* variables, then pgload.yaml, then defaults
//
// -d always overrides the database of a connection string. The auth method
// comes from cloud flags first, then pgload.yaml auth_method.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	project *config.ProjectConfig,
) (*pgload.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf("cannot combine --connection with -h, -p, -U or --sslmode: %w", pgload.ErrUsage)
	}
	if cloud.count() > 1 {
		return nil, fmt.Errorf("choose at most one of --aws, --google, --azure: %w", pgload.ErrUsage)
	}

	var cfg *pgload.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, env)
	case granular.IsEmpty() && env.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(env.DATABASE_URL, env)
	default:
		cfg, err = resolveFromGranularParams(granular, env, pc)
	}
	if err != nil {
		return nil, err
	}

	if granular.Database != "" {
		cfg.Database = granular.Database
	}

	if err := applyAuth(cfg, cloud, env, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr string, env *EnvVars) (*pgload.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, "prefer")
	}
	if cfg.Password == "" {
		cfg.Password = env.PGPASSWORD
	}
	return cfg, nil
}

func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, pc config.ConnectionConfig) (*pgload.ConnectionConfig, error) {
	cfg := &pgload.ConnectionConfig{
		Host:             firstNonEmpty(flags.Host, env.PGHOST, pc.Host, defaultHost),
		Username:         firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME")),
		Password:         env.PGPASSWORD,
		Database:         firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database, pgload.DefaultManagementDB),
		SSLMode:          firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, "prefer"),
		SSLCert:          pc.SSLCert,
		SSLKey:           pc.SSLKey,
		SSLRootCert:      pc.SSLRootCert,
		AuthMethod:       pgload.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value %q: must be an integer: %w", env.PGPORT, pgload.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = defaultPort
	}

	return cfg, nil
}

// applyAuth selects the auth method and copies the matching cloud parameters.
// Flags override environment variables, which override pgload.yaml.
func applyAuth(cfg *pgload.ConnectionConfig, cloud *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method, err := pgload.ParseAuthMethod(pc.AuthMethod)
	if err != nil {
		return err
	}
	switch {
	case cloud.AWS:
		method = pgload.AuthMethodAWSIAM
	case cloud.Google:
		method = pgload.AuthMethodGoogleIAM
	case cloud.Azure:
		method = pgload.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case pgload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case pgload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(cloud.GoogleInstance, pc.GoogleInstance)
	case pgload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
