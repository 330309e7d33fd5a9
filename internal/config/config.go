package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"faktur/internal/logger"
)

// Text sources accepted in TEXT_SOURCE.
const (
	SourcePDF        = "pdf"
	SourceVision     = "vision"
	SourceDocumentAI = "documentai"
)

type Config struct {
	// Text extraction
	TextSource        string
	MaxDocumentSizeMB int

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Rekap output
	RekapOutput  string
	RekapColumns string
	BatchWorkers int

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// HTTP
	HTTPAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		TextSource:                 strings.ToLower(getEnv("TEXT_SOURCE", SourcePDF)),
		MaxDocumentSizeMB:          getEnvInt("MAX_DOCUMENT_SIZE_MB", 20),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		RekapOutput:                getEnv("REKAP_OUTPUT", "rekap_faktur_coretax.xlsx"),
		RekapColumns:               getEnv("REKAP_COLUMNS", ""),
		BatchWorkers:               getEnvInt("BATCH_WORKERS", 4),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "Rekap Faktur"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns the configuration Load would produce with an empty
// environment.
func Default() *Config {
	return &Config{
		TextSource:           SourcePDF,
		MaxDocumentSizeMB:    20,
		GoogleCloudLocation:  "us",
		RekapOutput:          "rekap_faktur_coretax.xlsx",
		BatchWorkers:         4,
		GoogleSheetWorksheet: "Rekap Faktur",
		HTTPAddr:             ":8080",
		LogLevel:             "info",
		LogFormat:            "console",
		LogTimeFormat:        "2006-01-02T15:04:05Z07:00",
		LogOutput:            "stderr",
	}
}

func (c *Config) validate() error {
	switch c.TextSource {
	case SourcePDF, SourceVision:
	case SourceDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when TEXT_SOURCE=%s", SourceDocumentAI)
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when TEXT_SOURCE=%s", SourceDocumentAI)
		}
	default:
		return fmt.Errorf("TEXT_SOURCE must be one of %s, %s, %s (got %q)",
			SourcePDF, SourceVision, SourceDocumentAI, c.TextSource)
	}
	if c.MaxDocumentSizeMB <= 0 {
		return fmt.Errorf("MAX_DOCUMENT_SIZE_MB must be positive")
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be positive")
	}
	return nil
}

// MaxDocumentSizeBytes is MaxDocumentSizeMB in bytes.
func (c *Config) MaxDocumentSizeBytes() int64 {
	return int64(c.MaxDocumentSizeMB) * 1024 * 1024
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns -1 for values that are set but not integers, which
// validate then rejects.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}
