package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgload/internal/config"
	"github.com/vvka-141/pgload/internal/db"
	"github.com/vvka-141/pgload/internal/loader"
	"github.com/vvka-141/pgload/internal/logging"
	"github.com/vvka-141/pgload/internal/render"
	"github.com/vvka-141/pgload/internal/sqlbuilder"
	"github.com/vvka-141/pgload/internal/tui"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	azure          bool
	azureTenantID  string
	azureClientID  string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
}

// commonFlags holds the flags shared by every loading command.
type commonFlags struct {
	conn      connectionFlags
	configDir string
	format    string
	policy    string
	timeout   time.Duration
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	flags := cmd.Flags()

	flags.StringVar(&f.conn.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format)\n"+
			"Falls back to $DATABASE_URL when no -h/-p/-U/--sslmode flag is set")

	// Granular flags follow psql conventions.
	flags.StringVarP(&f.conn.host, "host", "h", "",
		"PostgreSQL host (default: $PGHOST or localhost)")
	flags.IntVarP(&f.conn.port, "port", "p", 0,
		"PostgreSQL port (default: $PGPORT or 5432)")
	flags.StringVarP(&f.conn.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	flags.StringVarP(&f.conn.database, "database", "d", "",
		"Database to read from (overrides the connection string database)")
	flags.StringVar(&f.conn.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full (default: $PGSSLMODE or prefer)")

	flags.BoolVar(&f.conn.aws, "aws", false,
		"Use AWS RDS IAM authentication")
	flags.StringVar(&f.conn.awsRegion, "aws-region", "",
		"AWS region for IAM auth (default: $AWS_REGION)")
	flags.BoolVar(&f.conn.google, "google", false,
		"Use Google Cloud SQL IAM authentication")
	flags.StringVar(&f.conn.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
	flags.BoolVar(&f.conn.azure, "azure", false,
		"Use Azure Entra ID authentication")
	flags.StringVar(&f.conn.azureTenantID, "azure-tenant-id", "",
		"Azure tenant ID (default: $AZURE_TENANT_ID)")
	flags.StringVar(&f.conn.azureClientID, "azure-client-id", "",
		"Azure client ID (default: $AZURE_CLIENT_ID)")

	flags.StringVar(&f.configDir, "config", ".",
		"Directory holding pgload.yaml and .env")
	flags.StringVar(&f.format, "format", string(render.FormatJSON),
		"Output format: json|yaml|table (default: pgload.yaml output.format or json)")
	flags.StringVar(&f.policy, "policy", pgload.AbortAll.String(),
		"Failure policy: abort|best-effort (default: pgload.yaml loader.failure_policy or abort)")
	flags.DurationVar(&f.timeout, "timeout", pgload.DefaultTimeout,
		"Bound on the whole command including connection retries")
}

// invocation is everything a loading command needs before it connects.
type invocation struct {
	logger     pgload.Logger
	project    *config.ProjectConfig
	connConfig *pgload.ConnectionConfig
	load       pgload.LoadConfig
	renderer   render.Renderer
}

// buildInvocation merges flags, pgload.yaml and the environment.
// Flags explicitly set win over pgload.yaml, which wins over flag defaults.
func buildInvocation(cmd *cobra.Command, f *commonFlags) (*invocation, error) {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	projectCfg, err := loadProjectConfig(f.configDir)
	if err != nil {
		return nil, err
	}

	connConfig, err := resolveConnectionFromFlags(f.conn, projectCfg)
	if err != nil {
		return nil, err
	}
	if verbose {
		logConnectionVerbose(logger, connConfig)
	}

	formatName := f.format
	policyName := f.policy
	var loaderCfg config.LoaderConfig
	if projectCfg != nil {
		loaderCfg = projectCfg.Loader
		if !cmd.Flags().Changed("format") && projectCfg.Output.Format != "" {
			formatName = projectCfg.Output.Format
		}
		if !cmd.Flags().Changed("policy") && loaderCfg.FailurePolicy != "" {
			policyName = loaderCfg.FailurePolicy
		}
	}

	format, err := render.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	policy, err := pgload.ParseFailurePolicy(policyName)
	if err != nil {
		return nil, err
	}
	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, f.timeout)
	if err != nil {
		return nil, err
	}

	load := pgload.LoadConfig{
		ConnectionString: db.BuildConnectionString(connConfig),
		DefaultOperator:  loaderCfg.DefaultOperator,
		IDColumn:         loaderCfg.IDColumn,
		FailurePolicy:    policy,
		Timeout:          timeout,
		Verbose:          verbose,
	}
	if err := load.Validate(); err != nil {
		return nil, err
	}

	return &invocation{
		logger:     logger,
		project:    projectCfg,
		connConfig: connConfig,
		load:       load,
		renderer:   newRenderer(format),
	}, nil
}

// newRenderer styles table output and fits cells to the terminal when
// stdout is a terminal.
func newRenderer(format render.Format) render.Renderer {
	r := render.Renderer{Format: format}
	if tui.IsStyled(os.Stdout) {
		r.Styled = true
		r.MaxCellWidth = tui.TerminalWidth(os.Stdout, defaultTerminalWidth) / 3
	}
	return r
}

const defaultTerminalWidth = 120

// loadFunc runs one loader call and returns the value to render.
type loadFunc func(ctx context.Context, l *loader.RowLoader) (any, error)

// openDatabase connects and returns the Database plus a release function.
// Tests replace it to run commands without PostgreSQL.
var openDatabase = func(ctx context.Context, cfg *pgload.ConnectionConfig, logger pgload.Logger) (pgload.Database, func(), error) {
	connector, err := db.NewConnector(cfg, db.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		if c, ok := connector.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, nil, err
	}
	release := func() {
		pool.Close()
		if c, ok := connector.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Verbose("closing connector: %v", err)
			}
		}
	}
	return db.NewPoolAdapter(pool), release, nil
}

// execute connects, runs fn under the command timeout and renders its result
// to the command's stdout.
func (inv *invocation) execute(cmd *cobra.Command, fn loadFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if inv.load.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.load.Timeout)
		defer cancel()
	}

	database, release, err := openDatabase(ctx, inv.connConfig, inv.logger)
	if err != nil {
		return err
	}
	defer release()

	l, err := loader.New(database, sqlbuilder.New(),
		loader.WithDefaultOperator(inv.load.DefaultOperator),
		loader.WithIDColumn(inv.load.IDColumn),
		loader.WithFailurePolicy(inv.load.FailurePolicy),
		loader.WithLogger(inv.logger),
	)
	if err != nil {
		return err
	}

	result, err := fn(ctx, l)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("command exceeded --timeout %s: %w", inv.load.Timeout, err)
		}
		return err
	}

	if rs, ok := result.(pgload.ResultSet); ok {
		for _, t := range rs.Failed() {
			inv.logger.Error("table %s skipped: %v", t.Table, t.Err)
		}
	}
	return inv.renderer.Write(cmd.OutOrStdout(), result)
}

// resolveEffectiveTimeout returns the effective timeout, preferring pgload.yaml if flag wasn't set.
func resolveEffectiveTimeout(
	cmd *cobra.Command,
	projectCfg *config.ProjectConfig,
	flagTimeout time.Duration,
) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		return projectCfg.TimeoutDuration()
	}
	return flagTimeout, nil
}

// loadProjectConfig loads .env and pgload.yaml from dir.
// Returns nil config if pgload.yaml does not exist (not an error).
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	if err := config.LoadEnv(dir); err != nil {
		return nil, err
	}

	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load pgload.yaml: %w", err)
	}
	return projectCfg, nil
}
