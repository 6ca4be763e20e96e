package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func validConfig() Config {
	return Config{
		Originals:   "originals-bucket-name",
		Destination: "processed-bucket-name",
		Region:      "us-east-2",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		message string
	}{
		{
			name:    "missing originals",
			mutate:  func(cfg *Config) { cfg.Originals = "" },
			message: `Missing required key "originals"`,
		},
		{
			name:    "missing destination",
			mutate:  func(cfg *Config) { cfg.Destination = "" },
			message: `Missing required key "destination"`,
		},
		{
			name:    "missing region",
			mutate:  func(cfg *Config) { cfg.Region = "" },
			message: `Missing required key "region"`,
		},
		{
			name: "first missing key is reported",
			mutate: func(cfg *Config) {
				cfg.Destination = ""
				cfg.Region = ""
				cfg.Signed = true
			},
			message: `Missing required key "destination"`,
		},
		{
			name:    "signed without token",
			mutate:  func(cfg *Config) { cfg.Signed = true },
			message: `"signed" is true but "token" is not set`,
		},
		{
			name:    "invalid uri",
			mutate:  func(cfg *Config) { cfg.URI = "not a url" },
			message: `"uri" must be an absolute URL, got "not a url" (set with --uri or RESIZETO_URI)`,
		},
		{
			name: "every malformed key is reported",
			mutate: func(cfg *Config) {
				cfg.URI = "not a url"
				cfg.NotifyQueueURL = "queue"
			},
			message: `"uri" must be an absolute URL, got "not a url" (set with --uri or RESIZETO_URI); ` +
				`"notify_queue_url" must be an absolute URL, got "queue" (set with --notify-queue-url or RESIZETO_NOTIFY_QUEUE_URL)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorAs(t, err, &InvalidConfigError{})
			require.EqualError(t, err, tt.message)
		})
	}

	t.Run("valid", func(t *testing.T) {
		cfgs := []Config{validConfig(), validConfig(), validConfig()}
		cfgs[1].Signed = true
		cfgs[1].Token = "asdf"
		cfgs[2].URI = "https://cdn.example.com/{key}"
		cfgs[2].NotifyQueueURL = "https://sqs.us-east-2.amazonaws.com/123456789012/variants"

		for _, cfg := range cfgs {
			assert.NoError(t, cfg.Validate())
		}
	})

	t.Run("token without signing is allowed", func(t *testing.T) {
		cfg := validConfig()
		cfg.Token = "asdf"
		require.NoError(t, cfg.Validate())
	})
}

func TestBaseURI(t *testing.T) {
	cfg := validConfig()
	require.Equal(t, "http://processed-bucket-name.s3-website.us-east-2.amazonaws.com", cfg.BaseURI())

	cfg.URI = "https://resize.to/"
	require.Equal(t, "https://resize.to", cfg.BaseURI())

	cfg.URI = "https://resize.to"
	require.Equal(t, "https://resize.to", cfg.BaseURI())
}

func createTempConfigFile(t *testing.T, name, content string) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"AWS_REGION", "RESIZETO_ORIGINALS", "RESIZETO_DESTINATION", "RESIZETO_REGION", "RESIZETO_URI", "RESIZETO_TOKEN", "RESIZETO_SIGNED", "RESIZETO_VERBOSE"} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("json file", func(t *testing.T) {
		clearEnv(t)
		configPath := createTempConfigFile(t, "config.json", `{
  "originals": "originals-bucket-name",
  "destination": "processed-bucket-name",
  "region": "us-east-2",
  "signed": true,
  "token": "asdf",
  "uri": "https://resize.to",
  "verbose": true,
  "variants_table": "variants"
}`)

		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, &Config{
			Originals:     "originals-bucket-name",
			Destination:   "processed-bucket-name",
			Region:        "us-east-2",
			URI:           "https://resize.to",
			Token:         "asdf",
			Signed:        true,
			Verbose:       true,
			VariantsTable: "variants",
		}, cfg)
	})

	t.Run("toml file", func(t *testing.T) {
		clearEnv(t)
		configPath := createTempConfigFile(t, "config.toml", `
originals = "o"
destination = "d"
region = "eu-west-1"
uniform_errors = true
`)
		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", cfg.Region)
		assert.True(t, cfg.UniformErrors)
	})

	t.Run("environment only", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESIZETO_ORIGINALS", "o")
		t.Setenv("RESIZETO_DESTINATION", "d")
		t.Setenv("AWS_REGION", "ap-southeast-2")
		t.Setenv("RESIZETO_SIGNED", "true")
		t.Setenv("RESIZETO_TOKEN", "secret")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "ap-southeast-2", cfg.Region)
		assert.True(t, cfg.Signed)
		assert.Equal(t, "secret", cfg.Token)
	})

	t.Run("prefixed region wins over AWS_REGION", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESIZETO_ORIGINALS", "o")
		t.Setenv("RESIZETO_DESTINATION", "d")
		t.Setenv("RESIZETO_REGION", "us-west-2")
		t.Setenv("AWS_REGION", "ap-southeast-2")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "us-west-2", cfg.Region)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearEnv(t)
		configPath := createTempConfigFile(t, "config.json", `{"originals": "o", "destination": "d", "region": "us-east-2"}`)
		t.Setenv("RESIZETO_DESTINATION", "env-destination")

		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "env-destination", cfg.Destination)
	})

	t.Run("overrides apply before validation", func(t *testing.T) {
		clearEnv(t)
		configPath := createTempConfigFile(t, "config.json", `{"originals": "o", "destination": "d", "region": "us-east-2", "signed": true}`)

		cfg, err := Load(configPath, func(cfg *Config) { cfg.Token = "from-secret-store" })
		require.NoError(t, err)
		assert.Equal(t, "from-secret-store", cfg.Token)
	})

	t.Run("invalid", func(t *testing.T) {
		clearEnv(t)
		configPath := createTempConfigFile(t, "config.json", `{"originals": "o", "region": "us-east-2"}`)

		_, err := Load(configPath)
		require.ErrorAs(t, err, &InvalidConfigError{})
		require.EqualError(t, err, `Missing required key "destination"`)
	})

	t.Run("bad paths", func(t *testing.T) {
		_, err := Load("/non/existent/path")
		assert.Error(t, err)

		_, err = Load(t.TempDir())
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	configPath := createTempConfigFile(t, "config.json", `{"originals": "o", "destination": "d", "region": "us-east-2", "uri": "https://file.example.com"}`)
	t.Setenv("RESIZETO_URI", "https://env.example.com")
	t.Setenv("RESIZETO_ORIGINALS", "env-originals")

	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	flagSet.String("config", "", "")
	flagSet.String("uri", "", "")
	flagSet.Bool("verbose", false, "")
	flagSet.Bool("signed", false, "")
	require.NoError(t, flagSet.Parse([]string{
		"--config", configPath,
		"--uri", "https://cli.example.com",
		"--verbose",
	}))

	cfg, err := LoadConfig(cli.NewContext(nil, flagSet, nil))
	require.NoError(t, err)

	// flags > environment variables > config file
	assert.Equal(t, "https://cli.example.com", cfg.URI)
	assert.Equal(t, "env-originals", cfg.Originals)
	assert.Equal(t, "d", cfg.Destination)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Signed)
}
