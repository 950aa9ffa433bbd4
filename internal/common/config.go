package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Scraper    ScraperConfig
	Documents  DocumentsConfig
	Enrichment EnrichmentConfig
	Output     OutputConfig
	Log        LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	OnConflict       string // "skip" | "update"
}

// ScraperConfig holds web fetching configuration
type ScraperConfig struct {
	UserAgent       string
	Timeout         time.Duration
	PolitenessDelay time.Duration
	Retries         int
	RenderJS        bool
	URLFile         string
	SeedURLs        []string
	MaxLinks        int
}

// DocumentsConfig holds local document processing configuration
type DocumentsConfig struct {
	Dir       string
	Pdftotext string
	Engine    string // "auto" | "pdftotext" | "native"
	MaxPages  int

	// Workers bounds how many files are extracted at once.
	Workers     int
	FileTimeout time.Duration
}

// EnrichmentConfig holds classification constants
type EnrichmentConfig struct {
	UITValue float64
}

// OutputConfig holds export locations
type OutputConfig struct {
	Dir        string
	ReportFile string
}

// LogConfig holds logging configuration
type LogConfig struct {
	File   string
	Level  string
	Format string
}

const (
	OnConflictSkip   = "skip"
	OnConflictUpdate = "update"
)

var defaultSeedURLs = []string{
	"https://www.gob.pe/busquedas?contenido[]=tramites",
	"https://www.gob.pe/sunat",
	"https://www.gob.pe/reniec",
	"https://www.gob.pe/sunarp",
}

// LoadConfig loads configuration from environment variables, reading an optional .env first.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			OnConflict:       strings.ToLower(getEnv("DB_ON_CONFLICT", OnConflictSkip)),
		},
		Scraper: ScraperConfig{
			UserAgent:       getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"),
			Timeout:         getEnvAsDuration("SCRAPER_TIMEOUT", 30*time.Second),
			PolitenessDelay: getEnvAsDuration("SCRAPER_POLITENESS_DELAY", 2*time.Second),
			Retries:         getEnvAsInt("SCRAPER_RETRIES", 2),
			RenderJS:        getEnvAsBool("SCRAPER_RENDER_JS", false),
			URLFile:         getEnv("SCRAPER_URL_FILE", "urls.txt"),
			SeedURLs:        getEnvAsList("SCRAPER_SEED_URLS", defaultSeedURLs),
			MaxLinks:        getEnvAsInt("SCRAPER_MAX_LINKS", 50),
		},
		Documents: DocumentsConfig{
			Dir:         getEnv("DOCUMENTS_DIR", "./documents"),
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Engine:      strings.ToLower(getEnv("PDF_ENGINE", "auto")),
			MaxPages:    getEnvAsInt("PDF_MAX_PAGES", 50),
			Workers:     getEnvAsInt("DOCUMENTS_WORKERS", 4),
			FileTimeout: getEnvAsDuration("DOCUMENTS_FILE_TIMEOUT", 2*time.Minute),
		},
		Enrichment: EnrichmentConfig{
			UITValue: getEnvAsFloat64("UIT_VALUE", constants.DefaultUITValue),
		},
		Output: OutputConfig{
			Dir:        getEnv("OUTPUT_DIR", "./output"),
			ReportFile: getEnv("REPORT_FILE", "scraping_report.txt"),
		},
		Log: LogConfig{
			File:   getEnv("LOG_FILE", "scraping.log"),
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate checks the loaded configuration. The database DSN is optional here;
// commands that need it check for it themselves.
func (c *Config) Validate() error {
	if c.Enrichment.UITValue <= 0 {
		return NewAppError(CodeConfig, "UIT_VALUE must be positive", ErrInvalidInput)
	}
	if c.Scraper.PolitenessDelay < 0 {
		return NewAppError(CodeConfig, "SCRAPER_POLITENESS_DELAY must not be negative", ErrInvalidInput)
	}
	if c.Scraper.Timeout <= 0 {
		return NewAppError(CodeConfig, "SCRAPER_TIMEOUT must be positive", ErrInvalidInput)
	}
	switch c.Database.OnConflict {
	case OnConflictSkip, OnConflictUpdate:
	default:
		return NewAppError(CodeConfig, "DB_ON_CONFLICT must be skip or update", ErrInvalidInput)
	}
	switch c.Documents.Engine {
	case "auto", "pdftotext", "native":
	default:
		return NewAppError(CodeConfig, "PDF_ENGINE must be auto, pdftotext or native", ErrInvalidInput)
	}
	if c.Documents.Workers <= 0 {
		return NewAppError(CodeConfig, "DOCUMENTS_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Documents.MaxPages <= 0 {
		return NewAppError(CodeConfig, "PDF_MAX_PAGES must be positive", ErrInvalidInput)
	}
	return nil
}

// RequireDatabase reports a configuration error when no DSN is set.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	return nil
}
