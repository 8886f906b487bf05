package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
)

// envPrefix namespaces the environment variables read by LoadConfig,
// e.g. TASKSYNC_API_URL.
const envPrefix = "TASKSYNC"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Backend and session
	APIURL          string
	Token           string
	UserID          string
	CredentialsFile string
	Project         string
	ServerAddr      string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. TASKSYNC_* environment variables
// 3. .env files
// 4. Config file (~/.tasksync.yaml, or configFile when given)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// .env files go first so their values are visible to viper's env lookup
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", constants.DefaultAPIURL)
	v.SetDefault("credentials_file", constants.DefaultCredentialsPath)
	v.SetDefault("server_addr", constants.DefaultServerAddr)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config file", configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tasksync")
		// A missing default config file is fine
		_ = v.ReadInConfig()
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		APIURL:          v.GetString("api_url"),
		Token:           v.GetString("token"),
		UserID:          v.GetString("user_id"),
		CredentialsFile: v.GetString("credentials_file"),
		Project:         v.GetString("project"),
		ServerAddr:      v.GetString("server_addr"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

// Flags carries the persistent flag values that override loaded configuration.
// Empty strings leave the loaded value in place.
type Flags struct {
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string
	APIURL   string
	Token    string
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(f Flags) {
	c.Verbose = c.Verbose || f.Verbose
	c.Quiet = c.Quiet || f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.APIURL != "" {
		c.APIURL = f.APIURL
	}
	if f.Token != "" {
		c.Token = f.Token
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		// godotenv.Load never overwrites a variable that is already set,
		// so the more specific file is loaded first
		_ = godotenv.Load(envFile)
	}
}
