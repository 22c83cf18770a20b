package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"jiraview/internal/aggregate"
	"jiraview/internal/dates"
	"jiraview/internal/exporter"
	"jiraview/internal/filter"
	"jiraview/internal/session"
	"jiraview/internal/store"
)

// EnvPrefix namespaces every environment variable, e.g. JIRAVIEW_SERVER_PORT
const EnvPrefix = "JIRAVIEW"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Table     TableConfig     `yaml:"table" envconfig:"TABLE"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// MaxUploadBytes bounds the size of an uploaded file.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	// OpenBrowser opens the UI in the default browser once the server answers.
	OpenBrowser bool `yaml:"open_browser" envconfig:"OPEN_BROWSER"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
	WebDir  string `yaml:"web_dir" envconfig:"WEB_DIR"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// StorageConfig selects where session documents are persisted
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER"`
	// Path is a directory for the file driver and a database file for sqlite.
	// Relative paths resolve against the data directory.
	Path string `yaml:"path" envconfig:"PATH"`
}

// TableConfig carries the column roles and table behaviour
type TableConfig struct {
	PageSize       int      `yaml:"page_size" envconfig:"PAGE_SIZE"`
	YearPivot      int      `yaml:"year_pivot" envconfig:"YEAR_PIVOT"`
	CreatedColumn  string   `yaml:"created_column" envconfig:"CREATED_COLUMN"`
	UpdatedColumn  string   `yaml:"updated_column" envconfig:"UPDATED_COLUMN"`
	StatusColumn   string   `yaml:"status_column" envconfig:"STATUS_COLUMN"`
	PriorityColumn string   `yaml:"priority_column" envconfig:"PRIORITY_COLUMN"`
	SummaryColumn  string   `yaml:"summary_column" envconfig:"SUMMARY_COLUMN"`
	QuickColumns   []string `yaml:"quick_columns" envconfig:"QUICK_COLUMNS"`
	Normalize      bool     `yaml:"normalize" envconfig:"NORMALIZE"`
}

// ExportConfig styles generated workbooks
type ExportConfig struct {
	HeaderColor  string  `yaml:"header_color" envconfig:"HEADER_COLOR"`
	ColumnWidth  float64 `yaml:"column_width" envconfig:"COLUMN_WIDTH"`
	NativeCharts bool    `yaml:"native_charts" envconfig:"NATIVE_CHARTS"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration from defaults, the first config file found
// and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch c.Storage.Driver {
	case store.DriverMemory, store.DriverFile, store.DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Table.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Table.PageSize)
	}
	if c.Table.YearPivot < 0 || c.Table.YearPivot > 99 {
		return fmt.Errorf("year pivot must be between 0 and 99, got %d", c.Table.YearPivot)
	}

	c.Export.HeaderColor = strings.TrimPrefix(c.Export.HeaderColor, "#")
	if c.Logging.Output != "both" && c.Logging.Output != "file" {
		c.Logging.Output = "console"
	}
	return nil
}

// findConfigFile returns the first config file present, or ""
func findConfigFile() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: "jiraview.log",
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			WebDir:  DefaultWebDir,
			LogsDir: DefaultLogsDir,
		},
		Storage: StorageConfig{
			Driver: store.DriverFile,
			Path:   "session",
		},
		Table: TableConfig{
			PageSize:       50,
			YearPivot:      dates.DefaultPivot,
			CreatedColumn:  filter.DefaultRoles.Created,
			UpdatedColumn:  filter.DefaultRoles.Updated,
			StatusColumn:   aggregate.DefaultRoles.Status,
			PriorityColumn: aggregate.DefaultRoles.Priority,
			SummaryColumn:  "Resumen",
			QuickColumns:   []string{"Area", "Prioridad", "Estado"},
			Normalize:      true,
		},
		Export: ExportConfig{
			HeaderColor:  exporter.DefaultHeaderColor,
			ColumnWidth:  exporter.DefaultColumnWidth,
			NativeCharts: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
	}
}

// SessionOptions translates the table and export settings for the engine.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		PageSize: c.Table.PageSize,
		DateRoles: filter.Roles{
			Created: c.Table.CreatedColumn,
			Updated: c.Table.UpdatedColumn,
		},
		MapperRoles: aggregate.Roles{
			Status:   c.Table.StatusColumn,
			Priority: c.Table.PriorityColumn,
		},
		SummaryColumn: c.Table.SummaryColumn,
		QuickColumns:  append([]string(nil), c.Table.QuickColumns...),
		Parser:        dates.NewParser(c.Table.YearPivot),
		Normalize:     c.Table.Normalize,
		Workbook: exporter.WorkbookOptions{
			HeaderColor:  c.Export.HeaderColor,
			ColumnWidth:  c.Export.ColumnWidth,
			NativeCharts: c.Export.NativeCharts,
		},
	}
}

// StoreOptions resolves the storage location against the data directory.
func (c *Config) StoreOptions(paths *Paths) store.Options {
	path := c.Storage.Path
	if path != "" && !filepath.IsAbs(path) && paths != nil {
		path = filepath.Join(paths.DataDir, path)
	}
	if c.Storage.Driver == store.DriverSQLite && filepath.Ext(path) == "" {
		path += ".db"
	}
	return store.Options{Driver: c.Storage.Driver, Path: path}
}
