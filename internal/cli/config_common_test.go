package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgload/internal/config"
	"github.com/vvka-141/pgload/internal/render"
	"github.com/vvka-141/pgload/pkg/pgload"
)

// newTestCommand returns a command with the common flags parsed from args.
func newTestCommand(t *testing.T, f *commonFlags, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().BoolP("verbose", "v", false, "")
	addCommonFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolveEffectiveTimeout(t *testing.T) {
	project := &config.ProjectConfig{Timeout: "2m"}

	var f commonFlags
	cmd := newTestCommand(t, &f)
	got, err := resolveEffectiveTimeout(cmd, project, f.timeout)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, got, "pgload.yaml wins over the flag default")

	cmd = newTestCommand(t, &f, "--timeout", "5s")
	got, err = resolveEffectiveTimeout(cmd, project, f.timeout)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got, "an explicit flag wins over pgload.yaml")

	got, err = resolveEffectiveTimeout(cmd, nil, f.timeout)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)
}

func TestLoadProjectConfig(t *testing.T) {
	cfg, err := loadProjectConfig(t.TempDir())
	require.NoError(t, err, "missing pgload.yaml is not an error")
	assert.Nil(t, cfg)

	dir := writeProject(t, "loader:\n  default_operator: OR\n")
	cfg, err = loadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "OR", cfg.Loader.DefaultOperator)

	_, err = loadProjectConfig(writeProject(t, "timeout: never\n"))
	assert.ErrorIs(t, err, pgload.ErrInvalidConfig)
}

func TestLoadProjectConfig_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PGLOAD_CLI_TEST=1\n"), 0644))
	t.Setenv("PGLOAD_CLI_TEST", "")
	require.NoError(t, os.Unsetenv("PGLOAD_CLI_TEST"))

	_, err := loadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("PGLOAD_CLI_TEST"))
}

func TestBuildInvocation_Defaults(t *testing.T) {
	isolateEnv(t)
	var f commonFlags
	cmd := newTestCommand(t, &f, "--config", t.TempDir())

	inv, err := buildInvocation(cmd, &f)
	require.NoError(t, err)
	assert.Equal(t, render.FormatJSON, inv.renderer.Format)
	assert.Equal(t, pgload.AbortAll, inv.load.FailurePolicy)
	assert.Equal(t, pgload.DefaultTimeout, inv.load.Timeout)
	assert.Equal(t, "localhost", inv.connConfig.Host)
	assert.NotEmpty(t, inv.load.ConnectionString)
}

func TestBuildInvocation_ProjectConfig(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t, `loader:
  default_operator: OR
  id_column: uuid
  failure_policy: best-effort
output:
  format: yaml
timeout: 1m
`)
	var f commonFlags
	cmd := newTestCommand(t, &f, "--config", dir)

	inv, err := buildInvocation(cmd, &f)
	require.NoError(t, err)
	assert.Equal(t, render.FormatYAML, inv.renderer.Format)
	assert.Equal(t, pgload.BestEffort, inv.load.FailurePolicy)
	assert.Equal(t, "OR", inv.load.DefaultOperator)
	assert.Equal(t, "uuid", inv.load.IDColumn)
	assert.Equal(t, time.Minute, inv.load.Timeout)
}

func TestBuildInvocation_FlagsBeatProjectConfig(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t, "loader:\n  failure_policy: best-effort\noutput:\n  format: yaml\n")
	var f commonFlags
	cmd := newTestCommand(t, &f, "--config", dir, "--policy", "abort", "--format", "table")

	inv, err := buildInvocation(cmd, &f)
	require.NoError(t, err)
	assert.Equal(t, render.FormatTable, inv.renderer.Format)
	assert.Equal(t, pgload.AbortAll, inv.load.FailurePolicy)
}

func TestBuildInvocation_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"format", []string{"--format", "csv"}, pgload.ErrUsage},
		{"policy", []string{"--policy", "sometimes"}, pgload.ErrInvalidConfig},
		{"negative timeout", []string{"--timeout", "-1s"}, pgload.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			var f commonFlags
			cmd := newTestCommand(t, &f, append(tt.args, "--config", t.TempDir())...)
			_, err := buildInvocation(cmd, &f)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildInvocation_UnsafeDefaultOperator(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t, "loader:\n  default_operator: \"OR 1=1; --\"\n")
	var f commonFlags
	cmd := newTestCommand(t, &f, "--config", dir)

	_, err := buildInvocation(cmd, &f)
	assert.ErrorIs(t, err, pgload.ErrInvalidConfig)
}
