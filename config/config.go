package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as the workbook source, refresh scheduling, parser policies, HTTP limits and
// the optional Postgres snapshot archive.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	WORKBOOK_PATH=./data/DAP.xlsm
//	WORKBOOK_SHEET=DAP_Main
//	REFRESH_INTERVAL=10s
//	ARCHIVE_ENABLED=false
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=dappulse
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Workbook WorkbookConfig // Where and how the market workbook is read
	Refresh  RefreshConfig  // When the workbook is re-read
	Policy   PolicyConfig   // Parser and PnL policies
	Session  SessionConfig  // Position ledger sessions
	Archive  ArchiveConfig  // Optional snapshot archive
	Postgres PostgresConfig // PostgreSQL connection settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimitRPS   float64       // Requests per second per client IP (0 disables)
	RateLimitBurst int           // Token bucket size per client IP
	RequestTimeout time.Duration // Per-request context deadline
}

// WorkbookConfig locates the workbook and bounds what is read from it.
//
// Fields:
//   - Path: .xlsx/.xlsm/.csv file read on every refresh.
//   - Sheet: market sheet name (default "DAP_Main").
//   - ProfitSheet: sheet exposed raw by /api/v1/profit (default "Profit").
//   - MaxRows / MaxCols: size of the market region (A1:AZ300 by default).
//   - HeaderScanLimit: rows searched for the "Outrights" header (5..15).
//   - FetchTimeout: bound on one read; a slower read counts as unavailable.
type WorkbookConfig struct {
	Path            string
	Sheet           string
	ProfitSheet     string
	MaxRows         int
	MaxCols         int
	HeaderScanLimit int
	FetchTimeout    time.Duration
}

// RefreshConfig schedules refresh passes.
type RefreshConfig struct {
	Interval       time.Duration // Periodic refresh, 0 disables the ticker
	Watch          bool          // Refresh when the workbook file changes on disk
	RetainLastGood bool          // Keep the previous catalog when a pass fails
}

// PolicyConfig selects the named parser and PnL policies.
type PolicyConfig struct {
	Duplicates      string  // "last" or "first"
	StructureTick   string  // "last-leg" or "uniform"
	SpreadTickValue float64 // Tick value given to every spread record
	FlyTickValue    float64 // Tick value given to every fly record
}

// SessionConfig controls the per-session position ledgers.
type SessionConfig struct {
	TTL time.Duration // Idle time after which a session is dropped, 0 keeps sessions forever
}

// ArchiveConfig toggles the Postgres snapshot archive.
type ArchiveConfig struct {
	Enabled   bool          // Write every successful catalog to Postgres
	Retention time.Duration // Delete snapshots older than this, 0 keeps everything
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		},
		Workbook: WorkbookConfig{
			Path:            viper.GetString("WORKBOOK_PATH"),
			Sheet:           viper.GetString("WORKBOOK_SHEET"),
			ProfitSheet:     viper.GetString("PROFIT_SHEET"),
			MaxRows:         viper.GetInt("WORKBOOK_MAX_ROWS"),
			MaxCols:         viper.GetInt("WORKBOOK_MAX_COLS"),
			HeaderScanLimit: viper.GetInt("HEADER_SCAN_LIMIT"),
			FetchTimeout:    viper.GetDuration("FETCH_TIMEOUT"),
		},
		Refresh: RefreshConfig{
			Interval:       viper.GetDuration("REFRESH_INTERVAL"),
			Watch:          viper.GetBool("WATCH_WORKBOOK"),
			RetainLastGood: viper.GetBool("RETAIN_LAST_GOOD"),
		},
		Policy: PolicyConfig{
			Duplicates:      strings.ToLower(viper.GetString("DUPLICATE_POLICY")),
			StructureTick:   strings.ToLower(viper.GetString("STRUCTURE_TICK_POLICY")),
			SpreadTickValue: viper.GetFloat64("SPREAD_TICK_VALUE"),
			FlyTickValue:    viper.GetFloat64("FLY_TICK_VALUE"),
		},
		Session: SessionConfig{
			TTL: viper.GetDuration("SESSION_TTL"),
		},
		Archive: ArchiveConfig{
			Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
			Retention: viper.GetDuration("ARCHIVE_RETENTION"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("REQUEST_TIMEOUT", "10s")

	viper.SetDefault("WORKBOOK_PATH", "./data/DAP.xlsm")
	viper.SetDefault("WORKBOOK_SHEET", "DAP_Main")
	viper.SetDefault("PROFIT_SHEET", "Profit")
	viper.SetDefault("WORKBOOK_MAX_ROWS", 300)
	viper.SetDefault("WORKBOOK_MAX_COLS", 52)
	viper.SetDefault("HEADER_SCAN_LIMIT", 15)
	viper.SetDefault("FETCH_TIMEOUT", "5s")

	viper.SetDefault("REFRESH_INTERVAL", "10s")
	viper.SetDefault("WATCH_WORKBOOK", true)
	viper.SetDefault("RETAIN_LAST_GOOD", true)

	viper.SetDefault("DUPLICATE_POLICY", "last")
	viper.SetDefault("STRUCTURE_TICK_POLICY", "last-leg")
	viper.SetDefault("SPREAD_TICK_VALUE", 100.0)
	viper.SetDefault("FLY_TICK_VALUE", 100.0)

	viper.SetDefault("SESSION_TTL", "12h")

	viper.SetDefault("ARCHIVE_ENABLED", false)
	viper.SetDefault("ARCHIVE_RETENTION", "0s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "dappulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
}

// Problems returns the names of missing or invalid settings, empty when cfg is usable.
// Postgres settings are only required when the archive is enabled. Policy names
// are checked where they are parsed (app.InitializeApp).
func (cfg Config) Problems() []string {
	var bad []string

	if cfg.Server.Port == "" {
		bad = append(bad, "SERVER_PORT")
	}
	if cfg.Workbook.Path == "" {
		bad = append(bad, "WORKBOOK_PATH")
	}
	if cfg.Workbook.Sheet == "" {
		bad = append(bad, "WORKBOOK_SHEET")
	}
	if cfg.Workbook.MaxRows <= 0 {
		bad = append(bad, "WORKBOOK_MAX_ROWS")
	}
	if cfg.Workbook.MaxCols <= 0 {
		bad = append(bad, "WORKBOOK_MAX_COLS")
	}
	if cfg.Workbook.HeaderScanLimit < 5 || cfg.Workbook.HeaderScanLimit > 15 {
		bad = append(bad, "HEADER_SCAN_LIMIT")
	}
	if cfg.Refresh.Interval < 0 {
		bad = append(bad, "REFRESH_INTERVAL")
	}

	if cfg.Archive.Enabled {
		if cfg.Postgres.Host == "" {
			bad = append(bad, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			bad = append(bad, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			bad = append(bad, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			bad = append(bad, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			bad = append(bad, "POSTGRES_DB")
		}
	}
	return bad
}

// validateConfig terminates the application when AppConfig is not usable.
func validateConfig() {
	if bad := AppConfig.Problems(); len(bad) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", bad)
	}
}
