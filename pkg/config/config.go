package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const EnvPrefix = "RESIZETO"

// Config is the handler configuration. It is read-only once validated.
type Config struct {
	// Originals is the bucket source images are read from.
	Originals string `toml:"originals" json:"originals" mapstructure:"originals" flag:"originals"`
	// Destination is the bucket processed images are written to.
	Destination string `toml:"destination" json:"destination" mapstructure:"destination" flag:"destination"`
	Region      string `toml:"region" json:"region" mapstructure:"region" flag:"region"`
	// URI overrides the base of the redirect location. It may contain a
	// {key} placeholder for the destination key.
	URI   string `toml:"uri" json:"uri" mapstructure:"uri" flag:"uri" validate:"omitempty,url"`
	Token string `toml:"token" json:"token" mapstructure:"token" flag:"token"`
	// Signed requires every request fragment to carry a valid signature.
	Signed  bool `toml:"signed" json:"signed" mapstructure:"signed" flag:"signed"`
	Verbose bool `toml:"verbose" json:"verbose" mapstructure:"verbose" flag:"verbose"`

	// UniformErrors reports every failure as a 500.
	UniformErrors bool `toml:"uniform_errors" json:"uniform_errors" mapstructure:"uniform_errors" flag:"uniform-errors"`
	// VariantsTable is the DynamoDB table processed variants are recorded in.
	VariantsTable string `toml:"variants_table" json:"variants_table" mapstructure:"variants_table" flag:"variants-table"`
	// NotifyQueueURL is the SQS queue processed variants are announced on.
	NotifyQueueURL string `toml:"notify_queue_url" json:"notify_queue_url" mapstructure:"notify_queue_url" flag:"notify-queue-url" validate:"omitempty,url"`
}

// InvalidConfigError is returned when a configuration cannot be used. No
// request is processed with an invalid configuration.
type InvalidConfigError struct {
	Message string
}

func (e InvalidConfigError) Error() string {
	return e.Message
}

// Validate checks the required keys in order, stopping at the first one
// missing, then the signing settings and finally the value formats.
func (cfg *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"originals", cfg.Originals},
		{"destination", cfg.Destination},
		{"region", cfg.Region},
	}
	for _, r := range required {
		if r.value == "" {
			return InvalidConfigError{fmt.Sprintf("Missing required key %q", r.key)}
		}
	}
	if cfg.Signed && cfg.Token == "" {
		return InvalidConfigError{`"signed" is true but "token" is not set`}
	}
	return checkFormats(cfg)
}

// BaseURI is the configured uri without a trailing slash, or the S3 website
// endpoint of the destination bucket.
func (cfg *Config) BaseURI() string {
	uri := cfg.URI
	if uri == "" {
		uri = fmt.Sprintf("http://%s.s3-website.%s.amazonaws.com", cfg.Destination, cfg.Region)
	}
	return strings.TrimSuffix(uri, "/")
}

// Load reads the configuration from the file at path, if any, applies
// environment overrides and then each of overrides before validating the
// result.
// overrides > environment variables > config file > defaults
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads the configuration for a CLI invocation.
// flags > environment variables > config file > defaults
func LoadConfig(cCtx *cli.Context) (*Config, error) {
	cfg, err := load(cCtx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	fromCLI(cCtx, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// load reads the configuration from the file at path (when not empty) and
// the environment. It does not validate.
func load(path string) (*Config, error) {
	v, err := setupViperWithDefaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if stat, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file path does not exist: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file at path %s: %w", path, err)
		} else if stat.IsDir() {
			return nil, fmt.Errorf("config file path points to a directory: %s", path)
		}

		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// fromCLI loads configuration values from CLI flags
func fromCLI(ctx *cli.Context, cfg *Config) {
	strs := map[string]*string{
		"originals":        &cfg.Originals,
		"destination":      &cfg.Destination,
		"region":           &cfg.Region,
		"uri":              &cfg.URI,
		"token":            &cfg.Token,
		"variants-table":   &cfg.VariantsTable,
		"notify-queue-url": &cfg.NotifyQueueURL,
	}
	for name, dst := range strs {
		if ctx.IsSet(name) {
			*dst = ctx.String(name)
		}
	}

	bools := map[string]*bool{
		"signed":         &cfg.Signed,
		"verbose":        &cfg.Verbose,
		"uniform-errors": &cfg.UniformErrors,
	}
	for name, dst := range bools {
		if ctx.IsSet(name) {
			*dst = ctx.Bool(name)
		}
	}
}

// setupViperWithDefaults creates a new Viper instance with default values and environment bindings
func setupViperWithDefaults() (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envMappings := map[string]string{
		"originals":        "ORIGINALS",
		"destination":      "DESTINATION",
		"region":           "REGION",
		"uri":              "URI",
		"token":            "TOKEN",
		"signed":           "SIGNED",
		"verbose":          "VERBOSE",
		"uniform_errors":   "UNIFORM_ERRORS",
		"variants_table":   "VARIANTS_TABLE",
		"notify_queue_url": "NOTIFY_QUEUE_URL",
	}
	for key, envVar := range envMappings {
		names := []string{key, EnvPrefix + "_" + envVar}
		// the Lambda runtime always sets AWS_REGION
		if key == "region" {
			names = append(names, "AWS_REGION")
		}
		if err := v.BindEnv(names...); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", key, err)
		}
	}

	v.SetDefault("signed", false)
	v.SetDefault("verbose", false)
	v.SetDefault("uniform_errors", false)

	return v, nil
}
