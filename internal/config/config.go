package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"stf/internal/storage"
)

// Environment variables read by ApplyEnv
const (
	EnvBrowser     = "STF_BROWSER"
	EnvRunID       = "STF_RUN_ID"
	EnvStoreDriver = "STF_STORE_DRIVER"
	EnvStoreDSN    = "STF_STORE_DSN"
	EnvPolicy      = "STF_POLICY"
	EnvProcessors  = "STF_PROCESSORS"
	EnvDBHost      = "DB_HOST"
	EnvDBPort      = "DB_PORT"
	EnvDBUsername  = "DB_USERNAME"
	EnvDBPassword  = "DB_PASSWORD"
	EnvDBDatabase  = "DB_DATABASE"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	SpecPath    string
	ResultsPath string

	// Storage settings
	StorageDir     string
	StoreFile      string
	StoreDriver    string
	StoreDSN       string
	OutputJSONFile string

	// Run context
	Browser string
	RunID   string
	Policy  string

	// Execution settings
	Processors int

	// Paths to ignore when scanning
	PathsToIgnore []string

	Database Database

	// Command flags
	Flags Flags
}

// Database holds the MySQL connection settings used by the SQL store and migrate
type Database struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	Processors  int
	SpecPath    string
	ResultsPath string
	NameFilter  string
	Browser     string
	RunID       string
	Policy      string
	StoreDriver string
	StoreDSN    string
	ShowHidden  bool
	ShowTests   bool
	Tree        bool
	FromPayload string
	ImportJSON  bool
	Fresh       bool
	Verbose     bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		SpecPath:       DefaultSpecPath,
		ResultsPath:    DefaultResultsPath,
		StorageDir:     DefaultStorageDir,
		StoreFile:      DefaultStoreFile,
		StoreDriver:    DefaultStoreDriver,
		OutputJSONFile: DefaultOutputJSONFile,
		Browser:        DefaultBrowser,
		Policy:         DefaultPolicy,
		Processors:     DefaultProcessors,
		Database: Database{
			Host:     DefaultDBHost,
			Port:     DefaultDBPort,
			Username: DefaultDBUsername,
			Name:     DefaultDBDatabase,
		},
		Flags: Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from the environment and applies flags on top
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply layers the project .env, the process environment and flags over the
// current values, in that order of increasing precedence.
func (c *Config) Apply(flags Flags) error {
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if err := c.LoadEnvFile(); err != nil {
		return err
	}
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	c.ApplyFlags(flags)
	return nil
}

// LoadEnvFile loads the project .env into the process environment. A
// missing file is not an error; variables already set are kept.
func (c *Config) LoadEnvFile() error {
	envPath := filepath.Join(c.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	return nil
}

// ApplyEnv overrides defaults with STF_* and DB_* environment variables
func (c *Config) ApplyEnv() error {
	setString(&c.Browser, EnvBrowser)
	setString(&c.RunID, EnvRunID)
	setString(&c.StoreDriver, EnvStoreDriver)
	setString(&c.StoreDSN, EnvStoreDSN)
	setString(&c.Policy, EnvPolicy)
	setString(&c.Database.Host, EnvDBHost)
	setString(&c.Database.Port, EnvDBPort)
	setString(&c.Database.Username, EnvDBUsername)
	setString(&c.Database.Password, EnvDBPassword)
	setString(&c.Database.Name, EnvDBDatabase)

	if v := os.Getenv(EnvProcessors); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvProcessors, v)
		}
		c.Processors = n
	}
	return nil
}

// ApplyFlags stores flags and lets every non-zero flag override the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Browser != "" {
		c.Browser = flags.Browser
	}
	if flags.RunID != "" {
		c.RunID = flags.RunID
	}
	if flags.Policy != "" {
		c.Policy = flags.Policy
	}
	if flags.StoreDriver != "" {
		c.StoreDriver = flags.StoreDriver
	}
	if flags.StoreDSN != "" {
		c.StoreDSN = flags.StoreDSN
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// GetSpecPath returns the spec discovery root, using the flag if provided
func (c *Config) GetSpecPath() string {
	return c.resolve(c.Flags.SpecPath, c.SpecPath)
}

// GetResultsPath returns the directory holding outcome streams
func (c *Config) GetResultsPath() string {
	return c.resolve(c.Flags.ResultsPath, c.ResultsPath)
}

// GetResultsFile returns the outcome stream for the named spec
func (c *Config) GetResultsFile(specName string) string {
	return filepath.Join(c.GetResultsPath(), specName+".ndjson")
}

func (c *Config) resolve(flag, fallback string) string {
	if flag != "" {
		// relative flags are taken from the project path
		if filepath.IsAbs(flag) {
			return flag
		}
		return filepath.Join(c.ProjectPath, flag)
	}
	return filepath.Join(c.ProjectPath, fallback)
}

// GetStorePath returns the absolute path of the JSON filter store, so every
// command and every page of a run read the same file regardless of cwd.
func (c *Config) GetStorePath() string {
	return absPath(filepath.Join(c.ProjectPath, c.StorageDir, c.StoreFile))
}

// GetOutputPath returns the absolute path of the report file
func (c *Config) GetOutputPath() string {
	return absPath(filepath.Join(c.ProjectPath, c.StorageDir, c.OutputJSONFile))
}

// UsesJSONStore reports whether filter sets live in the JSON store file
func (c *Config) UsesJSONStore() bool {
	return c.StoreDriver == "" || c.StoreDriver == DefaultStoreDriver
}

// GetStoreDSN returns the DSN for the configured SQL driver. For MySQL it
// falls back to the DB_* settings when no DSN was given.
func (c *Config) GetStoreDSN() string {
	if c.StoreDSN != "" {
		return c.StoreDSN
	}
	switch c.StoreDriver {
	case storage.DriverMySQL:
		return storage.MySQLDSN(c.Database.Host, c.Database.Port, c.Database.Username, c.Database.Password, c.Database.Name)
	case storage.DriverSQLite:
		return absPath(filepath.Join(c.ProjectPath, c.StorageDir, "filters.db"))
	default:
		return ""
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
