package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgload/pkg/pgload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type LoaderConfig struct {
	DefaultOperator string `yaml:"default_operator,omitempty"`
	IDColumn        string `yaml:"id_column,omitempty"`
	FailurePolicy   string `yaml:"failure_policy,omitempty"`
}

type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Loader     LoaderConfig     `yaml:"loader"`
	Output     OutputConfig     `yaml:"output"`
	Timeout    string           `yaml:"timeout"`
	Queries    SavedQueries     `yaml:"queries"`
}

const (
	ConfigFileName = "pgload.yaml"
	EnvFileName    = ".env"
)

// Load reads pgload.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", ConfigFileName, pgload.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv loads dir/.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%s: %w: %w", EnvFileName, pgload.ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks values that YAML decoding alone cannot reject.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := pgload.ParseFailurePolicy(c.Loader.FailurePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := pgload.ParseAuthMethod(c.Connection.AuthMethod); err != nil {
		errs = append(errs, fmt.Errorf("connection.auth_method: %w", err))
	}
	if c.Connection.Port < 0 || c.Connection.Port > 65535 {
		errs = append(errs, fmt.Errorf("connection.port %d out of range: %w", c.Connection.Port, pgload.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// TimeoutDuration parses the timeout field; empty means zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("timeout %q: %w", c.Timeout, pgload.ErrInvalidConfig)
	}
	return d, nil
}
