package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Paths      PathsConfig
	OCR        OCRConfig
	Processing ProcessingConfig
}

// DatabaseConfig holds the sqlite store configuration.
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// PathsConfig holds the directory layout for a processing run.
type PathsConfig struct {
	DataDir    string // input certification sheets
	OutputDir  string // all generated artifacts
	ShipFile   string // reference ship list, one name per line
	RosterFile string // rate/last/first roster CSV
}

// OCRConfig holds recognition-related configuration.
type OCRConfig struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI, default 200
	MaxPages      int    // 0 = no limit
	TessdataDir   string
}

// ProcessingConfig holds classification and annotation behavior.
type ProcessingConfig struct {
	StrikeColor      string  // "black" or "red"
	ShipMatchMin     float64 // minimum fuzzy score to accept a ship match
	IdentityMatchMin float64 // minimum fuzzy score to accept a roster identity
	BatchTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        getEnv("SEAPAY_DB", "seapay.db"),
			BusyTimeout: getEnvAsDuration("SEAPAY_DB_BUSY_TIMEOUT", 5*time.Second),
		},
		Paths: PathsConfig{
			DataDir:    getEnv("SEAPAY_DATA_DIR", "./data"),
			OutputDir:  getEnv("SEAPAY_OUTPUT_DIR", "./output"),
			ShipFile:   getEnv("SEAPAY_SHIP_FILE", "./ships.txt"),
			RosterFile: getEnv("SEAPAY_ROSTER_FILE", "./roster.csv"),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("SEAPAY_PDFTOTEXT", "pdftotext"),
			Pdftoppm:      getEnv("SEAPAY_PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("SEAPAY_TESSERACT", "tesseract"),
			TesseractLang: getEnv("SEAPAY_TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("SEAPAY_OCR_DPI", 200),
			MaxPages:      getEnvAsInt("SEAPAY_OCR_MAX_PAGES", 0),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		},
		Processing: ProcessingConfig{
			StrikeColor:      getEnv("SEAPAY_STRIKE_COLOR", "black"),
			ShipMatchMin:     getEnvAsFloat64("SEAPAY_SHIP_MATCH_MIN", 0.60),
			IdentityMatchMin: getEnvAsFloat64("SEAPAY_IDENTITY_MATCH_MIN", 0.60),
			BatchTimeout:     getEnvAsDuration("SEAPAY_BATCH_TIMEOUT", 30*time.Minute),
		},
	}
}

// Output subdirectories, resolved against Paths.OutputDir.
func (p PathsConfig) MarkedDir() string  { return filepath.Join(p.OutputDir, "marked_sheets") }
func (p PathsConfig) SummaryDir() string { return filepath.Join(p.OutputDir, "summary") }
func (p PathsConfig) TrackerDir() string { return filepath.Join(p.OutputDir, "tracker") }
func (p PathsConfig) ReviewPath() string { return filepath.Join(p.OutputDir, "SEA_PAY_REVIEW.json") }

// EnsureDirs creates the input/output tree. Call once at startup.
func (p PathsConfig) EnsureDirs() error {
	for _, dir := range []string{p.DataDir, p.OutputDir, p.MarkedDir(), p.SummaryDir(), p.TrackerDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
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

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return NewAppError("CONFIG_ERROR", "SEAPAY_DATA_DIR is required", ErrInvalidInput)
	}
	if c.Paths.OutputDir == "" {
		return NewAppError("CONFIG_ERROR", "SEAPAY_OUTPUT_DIR is required", ErrInvalidInput)
	}
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "SEAPAY_DB is required", ErrInvalidInput)
	}
	return nil
}
