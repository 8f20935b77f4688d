// Package config loads shelfscan configuration from defaults, an
// optional yaml file, and SHELFSCAN_* environment variables, in
// ascending precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all shelfscan settings.
type Config struct {
	// DatabasePath is where the SQLite database lives.
	DatabasePath string `mapstructure:"database_path"`

	// SpoolDir is watched for dropped scan files in watch mode.
	SpoolDir string `mapstructure:"spool_dir"`

	Lookup   LookupConfig   `mapstructure:"lookup"`
	Keywords KeywordsConfig `mapstructure:"keywords"`
}

// LookupConfig configures the external metadata services.
type LookupConfig struct {
	// Timeout bounds each upstream HTTP request.
	Timeout time.Duration `mapstructure:"timeout"`

	// Pipeline is the enrichment order. Known names: openlibrary,
	// googlebooks, upcitemdb.
	Pipeline []string `mapstructure:"pipeline"`

	EANSearch   ServiceConfig `mapstructure:"eansearch"`
	OpenLibrary ServiceConfig `mapstructure:"openlibrary"`
	GoogleBooks ServiceConfig `mapstructure:"googlebooks"`
	UPCItemDB   ServiceConfig `mapstructure:"upcitemdb"`
}

// ServiceConfig is one upstream endpoint. BaseURL empty means the
// public endpoint; APIKey is only meaningful for EANSearch.
type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// KeywordsConfig selects and tunes the keyword extractor.
type KeywordsConfig struct {
	// Extractor is "frequency" (offline, default) or "genai".
	Extractor string `mapstructure:"extractor"`
	Max       int    `mapstructure:"max"`

	// GenAI settings, used when Extractor is "genai".
	GenAIAPIKey string `mapstructure:"genai_api_key"`
	GenAIModel  string `mapstructure:"genai_model"`
}

// Load reads configuration. An empty path consults an optional
// shelfscan.yaml in the data directory or the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	dataDir := defaultDataDir()
	v.SetDefault("database_path", filepath.Join(dataDir, "books.db"))
	v.SetDefault("spool_dir", filepath.Join(dataDir, "spool"))
	v.SetDefault("lookup.timeout", 5*time.Second)
	v.SetDefault("lookup.pipeline", []string{"openlibrary", "googlebooks", "upcitemdb"})
	v.SetDefault("keywords.extractor", "frequency")
	v.SetDefault("keywords.max", 8)
	v.SetDefault("keywords.genai_api_key", "")
	v.SetDefault("keywords.genai_model", "gemini-2.0-flash")

	// Every key needs a default registered, or AutomaticEnv will not
	// surface its SHELFSCAN_* override through Unmarshal.
	for _, svc := range []string{"eansearch", "openlibrary", "googlebooks", "upcitemdb"} {
		v.SetDefault("lookup."+svc+".base_url", "")
		v.SetDefault("lookup."+svc+".api_key", "")
	}

	v.SetEnvPrefix("SHELFSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("shelfscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing implicit config is fine; a malformed one is not.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// defaultDataDir mirrors the desktop original: a per-user writable
// application directory.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "shelfscan")
}
