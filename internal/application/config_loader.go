package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// ConfigLoader provides YAML configuration parsing and validation for
// analysis runs, turning a declarative file into a checked AnalysisConfig.
type ConfigLoader struct {
	// validator performs struct field validation plus the custom column
	// and reportformat rules.
	validator *validator.Validate
}

// NewConfigLoader creates a loader with the custom validators registered.
// NewConfigLoader returns an error if validator registration fails.
func NewConfigLoader() (*ConfigLoader, error) {
	v := validator.New()

	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &ConfigLoader{validator: v}, nil
}

// LoadFromFile reads, defaults and validates a configuration file.
func (cl *ConfigLoader) LoadFromFile(path string) (*AnalysisConfig, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return cl.load(data)
}

// LoadFromReader reads all data from r and loads it like LoadFromFile.
func (cl *ConfigLoader) LoadFromReader(r io.Reader) (*AnalysisConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return cl.load(data)
}

func (cl *ConfigLoader) load(data []byte) (*AnalysisConfig, error) {
	config, err := cl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cl.Validate(config); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return config, nil
}

// parseYAML decodes data over DefaultAnalysisConfig so omitted keys keep
// their defaults. Decoding is strict: unknown fields are rejected, which
// keeps typos from being silently ignored.
func (cl *ConfigLoader) parseYAML(data []byte) (*AnalysisConfig, error) {
	config := DefaultAnalysisConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// Validate runs struct and semantic validation on a configuration. It is
// exported so that configurations assembled from CLI flags go through the
// same checks as files.
func (cl *ConfigLoader) Validate(config *AnalysisConfig) error {
	if err := cl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// validateSemantics checks the cross-field rules struct tags cannot express.
func validateSemantics(config *AnalysisConfig) error {
	verr := domain.NewValidationError("analysis config")

	ind := config.Statistics.Independence
	if ind.Enabled {
		if ind.ColumnA == "" || ind.ColumnB == "" {
			verr.AddError("independence test requires column_a and column_b")
		} else if ind.ColumnA == ind.ColumnB {
			verr.AddError(fmt.Sprintf("independence test columns must differ, both are %q", ind.ColumnA))
		}
	}

	if config.Tracking.Enabled && !config.Tracking.HasSink() {
		verr.AddError("tracking is enabled but no pushgateway_url, s3.bucket or local_dir is set")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// LoadCredentials overlays tracking secrets from the environment.
// Failures are reported as *ports.ConfigError. An S3 key pair must be
// given whole, and a pushgateway password needs a username.
func LoadCredentials(ctx context.Context, config *AnalysisConfig) error {
	creds := &config.Tracking.Credentials
	if err := envconfig.Process(ctx, creds); err != nil {
		return ports.NewConfigError("tracking.credentials", err)
	}

	switch {
	case creds.S3AccessKeyID != "" && creds.S3SecretAccessKey == "":
		return ports.NewConfigError("JUDGESTAT_S3_SECRET_ACCESS_KEY", ports.ErrConfigNotFound)
	case creds.S3AccessKeyID == "" && creds.S3SecretAccessKey != "":
		return ports.NewConfigError("JUDGESTAT_S3_ACCESS_KEY_ID", ports.ErrConfigNotFound)
	case creds.PushgatewayPassword != "" && creds.PushgatewayUsername == "":
		return ports.NewConfigError("JUDGESTAT_PUSHGATEWAY_USERNAME", ports.ErrConfigNotFound)
	}
	return nil
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance.
// registerCustomValidators returns an error if any validator registration fails.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("column", validateColumn); err != nil {
		return fmt.Errorf("failed to register column validator: %w", err)
	}
	if err := v.RegisterValidation("reportformat", validateReportFormat); err != nil {
		return fmt.Errorf("failed to register reportformat validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3
}

// validateColumn accepts the names of the categorical dataset columns.
func validateColumn(fl validator.FieldLevel) bool {
	_, err := domain.ParseColumn(fl.Field().String())
	return err == nil
}

// validateReportFormat accepts the known report formats.
func validateReportFormat(fl validator.FieldLevel) bool {
	return slices.Contains(AllFormats, fl.Field().String())
}
