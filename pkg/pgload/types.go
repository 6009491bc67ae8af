package pgload

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FailurePolicy decides what a multi-table load does when one table fails.
type FailurePolicy int

const (
	// AbortAll fails the whole call on the first statement or fetch failure
	// and discards the tables already loaded.
	AbortAll FailurePolicy = iota

	// BestEffort records the failing table and keeps loading the others.
	// The call fails only when every requested table failed.
	BestEffort
)

// String returns the name used in flags and pgload.yaml.
func (p FailurePolicy) String() string {
	switch p {
	case AbortAll:
		return "abort"
	case BestEffort:
		return "best-effort"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsValid returns true if the FailurePolicy is a defined value.
func (p FailurePolicy) IsValid() bool {
	return p == AbortAll || p == BestEffort
}

// ParseFailurePolicy parses "abort" or "best-effort" (case-insensitive).
// An empty string yields AbortAll.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort", "abort-all":
		return AbortAll, nil
	case "best-effort", "besteffort":
		return BestEffort, nil
	default:
		return AbortAll, fmt.Errorf("unknown failure policy %q (valid: abort, best-effort): %w", s, ErrInvalidConfig)
	}
}

// LoadConfig contains the parameters a CLI command hands to the loader.
type LoadConfig struct {
	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format)
	ConnectionString string

	// DefaultOperator joins clauses of specs without an operator override
	DefaultOperator string

	// IDColumn is the column matched by by-id loads
	IDColumn string

	// FailurePolicy controls multi-table failure handling
	FailurePolicy FailurePolicy

	// Timeout bounds the whole command
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if op := strings.TrimSpace(c.DefaultOperator); op != "" && strings.ContainsAny(op, ";'\"") {
		errs = append(errs, fmt.Errorf("default operator %q contains forbidden characters: %w", op, ErrInvalidConfig))
	}

	if !c.FailurePolicy.IsValid() {
		errs = append(errs, fmt.Errorf("invalid failure policy %s: %w", c.FailurePolicy, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Client certificate material for verify-ca / verify-full setups
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is used when AuthMethod is AuthMethodAWSIAM
	AWSRegion string

	// GoogleInstance is the Cloud SQL connection name "project:region:instance"
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the pgload.yaml auth_method value to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
