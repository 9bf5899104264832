package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig
	Spreadsheet SpreadsheetConfig
	Logger      LoggerConfig
	Security    SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SpreadsheetConfig describes where the sales sheet lives and how it is laid out.
type SpreadsheetConfig struct {
	Path        string        `yaml:"path"`
	Sheet       string        `yaml:"sheet"`
	SkipRows    int           `yaml:"skip_rows"`
	Columns     string        `yaml:"columns"`
	MaxRows     int           `yaml:"max_rows"`
	DateLayouts []string      `yaml:"date_layouts"`
	Headers     HeaderConfig  `yaml:"headers"`
	CacheDir    string        `yaml:"cache_dir"`
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

// HeaderConfig maps each record field to its column header in the sheet.
type HeaderConfig struct {
	Branch   string `yaml:"branch"`
	Product  string `yaml:"product"`
	Date     string `yaml:"date"`
	Pending  string `yaml:"pending"`
	Total    string `yaml:"total"`
	Quantity string `yaml:"quantity"`
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// DefaultSpreadsheet returns the layout of the stock "datos.xlsx" workbook.
func DefaultSpreadsheet() SpreadsheetConfig {
	return SpreadsheetConfig{
		Path:     "datos.xlsx",
		Sheet:    "ventas",
		SkipRows: 1,
		Columns:  "C:N",
		MaxRows:  1000,
		DateLayouts: []string{
			"02/01/2006",
			"02-01-2006",
			"02:01:2006",
			"2006-01-02",
			"2006-01-02 15:04:05",
			"02-01-06",
			"02/01/06",
			time.RFC3339,
		},
		Headers: HeaderConfig{
			Branch:   "Sucursal",
			Product:  "Producto",
			Date:     "Fecha",
			Pending:  "Importe Pendiente",
			Total:    "Importe Total",
			Quantity: "Cantidad Surtida",
		},
		LoadTimeout: 30 * time.Second,
	}
}

func Load() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load(getEnvString("ENV_FILE", ".env"))

	sheet := DefaultSpreadsheet()
	if path := os.Getenv("DASHBOARD_LAYOUT_FILE"); path != "" {
		if err := loadLayoutFile(path, &sheet); err != nil {
			return nil, err
		}
	}

	sheet.Path = getEnvString("SPREADSHEET_PATH", sheet.Path)
	sheet.Sheet = getEnvString("SPREADSHEET_SHEET", sheet.Sheet)
	sheet.SkipRows = getEnvInt("SPREADSHEET_SKIP_ROWS", sheet.SkipRows)
	sheet.Columns = getEnvString("SPREADSHEET_COLUMNS", sheet.Columns)
	sheet.MaxRows = getEnvInt("SPREADSHEET_MAX_ROWS", sheet.MaxRows)
	sheet.DateLayouts = getEnvStringSlice("SPREADSHEET_DATE_LAYOUTS", sheet.DateLayouts)
	sheet.CacheDir = getEnvString("SPREADSHEET_CACHE_DIR", sheet.CacheDir)
	sheet.LoadTimeout = getEnvDuration("SPREADSHEET_LOAD_TIMEOUT", sheet.LoadTimeout)

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8501),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Spreadsheet: sheet,
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8501"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadLayoutFile(path string, sheet *SpreadsheetConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read layout file: %w", err)
	}
	if err := yaml.Unmarshal(data, sheet); err != nil {
		return fmt.Errorf("parse layout file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if err := c.Spreadsheet.validate(); err != nil {
		return err
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func (s SpreadsheetConfig) validate() error {
	if s.Path == "" {
		return fmt.Errorf("spreadsheet path cannot be empty")
	}
	if s.Sheet == "" {
		return fmt.Errorf("spreadsheet sheet name cannot be empty")
	}
	if s.SkipRows < 0 {
		return fmt.Errorf("spreadsheet skip rows cannot be negative, got %d", s.SkipRows)
	}
	if s.MaxRows <= 0 {
		return fmt.Errorf("spreadsheet max rows must be positive, got %d", s.MaxRows)
	}
	if len(s.DateLayouts) == 0 {
		return fmt.Errorf("at least one date layout is required")
	}
	if s.LoadTimeout <= 0 {
		return fmt.Errorf("spreadsheet load timeout must be positive")
	}

	h := s.Headers
	for name, v := range map[string]string{
		"branch": h.Branch, "product": h.Product, "date": h.Date,
		"pending": h.Pending, "total": h.Total, "quantity": h.Quantity,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("header for %s cannot be empty", name)
		}
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
