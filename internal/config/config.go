// Package config loads the ledger command configuration from a TOML file,
// an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/tsawler/ledger/mapping"
	"github.com/tsawler/ledger/normalize"
	"github.com/tsawler/ledger/preprocess"
	"github.com/tsawler/ledger/tables"
)

// OCR backends
const (
	BackendTesseract = "tesseract"
	BackendVision    = "vision"
	BackendAzure     = "azure"
	BackendHOCR      = "hocr"
)

// Config holds all command configuration
type Config struct {
	OCR        OCRConfig        `toml:"ocr"`
	Preprocess PreprocessConfig `toml:"preprocess"`
	Cluster    ClusterConfig    `toml:"cluster"`
	Normalize  NormalizeConfig  `toml:"normalize"`
	Columns    ColumnsConfig    `toml:"columns"`
	Output     OutputConfig     `toml:"output"`
}

type OCRConfig struct {
	Backend string `toml:"backend"`

	// Path to a service account JSON file for Google Cloud Vision
	Credentials string `toml:"credentials"`

	// Azure Computer Vision endpoint and subscription key
	Endpoint string `toml:"endpoint"`
	Key      string `toml:"key"`

	// Tesseract language list ("spa+eng"), Vision language hint or Azure
	// language; empty picks the backend default
	Language string `toml:"language"`

	PageSegMode   int     `toml:"page_seg_mode"`
	MinConfidence float64 `toml:"min_confidence"`

	// Requests per second sent to a remote backend; 0 disables limiting
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type PreprocessConfig struct {
	Enabled    bool    `toml:"enabled"`
	Grayscale  bool    `toml:"grayscale"`
	Contrast   float64 `toml:"contrast"`
	Sharpen    float64 `toml:"sharpen"`
	Brightness float64 `toml:"brightness"`
	Gamma      float64 `toml:"gamma"`
	Margin     float64 `toml:"margin"`
	MinHeight  int     `toml:"min_height"`
}

type ClusterConfig struct {
	RowTolerance int `toml:"row_tolerance"`
	ColumnGap    int `toml:"column_gap"`
}

type NormalizeConfig struct {
	UnknownMarker string   `toml:"unknown_marker"`
	MinYear       int      `toml:"min_year"`
	MaxYear       int      `toml:"max_year"`
	Placeholders  []string `toml:"placeholders"`
}

type ColumnsConfig struct {
	// Leading rows dropped from every table
	Skip int `toml:"skip"`

	// Detect the mapping from the first row instead of Map
	Header bool `toml:"header"`

	// Field name to source column index; empty means identity
	Map map[string]int `toml:"map"`
}

type OutputConfig struct {
	// Single-character field separator for CSV input and output
	Delimiter string `toml:"delimiter"`

	// SQLite file that receives every run; empty disables persistence
	Database string `toml:"database"`

	// Parallel sources during a merge
	Workers int `toml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	pre := preprocess.DefaultConfig()
	cl := tables.DefaultConfig()
	norm := normalize.DefaultConfig()

	return &Config{
		OCR: OCRConfig{
			Backend:     BackendTesseract,
			PageSegMode: 6,
			Burst:       1,
		},
		Preprocess: PreprocessConfig{
			Enabled:    true,
			Grayscale:  pre.Grayscale,
			Contrast:   pre.Contrast,
			Sharpen:    pre.Sharpen,
			Brightness: pre.Brightness,
			Gamma:      pre.Gamma,
			Margin:     pre.Margin,
			MinHeight:  pre.MinHeight,
		},
		Cluster: ClusterConfig{
			RowTolerance: cl.RowTolerance,
			ColumnGap:    cl.ColumnGap,
		},
		Normalize: NormalizeConfig{
			UnknownMarker: norm.UnknownMarker,
			MinYear:       norm.MinYear,
			MaxYear:       norm.MaxYear,
			Placeholders:  norm.Placeholders,
		},
		Columns: ColumnsConfig{
			Skip: 1,
		},
		Output: OutputConfig{
			Delimiter: ";",
			Workers:   4,
		},
	}
}

// Load reads path over the defaults, then applies .env and environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile copies variables from a .env file into the environment
// without overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides OCR settings from the environment.
func (c *Config) ApplyEnv() {
	c.OCR.Backend = getEnv("LEDGER_OCR_BACKEND", c.OCR.Backend)
	c.OCR.Credentials = getEnv("LEDGER_VISION_CREDENTIALS", c.OCR.Credentials)
	c.OCR.Endpoint = getEnv("AZURE_VISION_ENDPOINT", c.OCR.Endpoint)
	c.OCR.Key = getEnv("AZURE_VISION_KEY", c.OCR.Key)
	c.OCR.Language = getEnv("LEDGER_OCR_LANGUAGE", c.OCR.Language)
	c.OCR.Rate = getEnvAsFloat("LEDGER_OCR_RATE", c.OCR.Rate)
	c.Output.Database = getEnv("LEDGER_DB", c.Output.Database)
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch c.OCR.Backend {
	case BackendTesseract, BackendVision, BackendAzure, BackendHOCR:
	default:
		return fmt.Errorf("unknown OCR backend %q", c.OCR.Backend)
	}
	if c.OCR.Backend == BackendAzure && (c.OCR.Endpoint == "" || c.OCR.Key == "") {
		return errors.New("azure backend requires endpoint and key")
	}
	if len([]rune(c.Output.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Output.Delimiter)
	}
	if c.Columns.Skip < 0 {
		return fmt.Errorf("columns.skip must be non-negative, got %d", c.Columns.Skip)
	}
	if err := c.Tables().Validate(); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	if err := c.Normalizer().Validate(); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if err := c.Enhancement().Validate(); err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	if _, err := c.Mapping(); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	return nil
}

// Tables returns the clusterer configuration.
func (c *Config) Tables() tables.Config {
	return tables.Config{
		RowTolerance: c.Cluster.RowTolerance,
		ColumnGap:    c.Cluster.ColumnGap,
	}
}

// Normalizer returns the field rule configuration. Reported row numbers
// start after the skipped header rows; header detection always skips at
// least one.
func (c *Config) Normalizer() normalize.Config {
	skip := c.Columns.Skip
	if c.Columns.Header {
		skip = max(skip, 1)
	}
	return normalize.Config{
		UnknownMarker: c.Normalize.UnknownMarker,
		MinYear:       c.Normalize.MinYear,
		MaxYear:       c.Normalize.MaxYear,
		FirstRow:      skip + 1,
		Placeholders:  c.Normalize.Placeholders,
	}
}

// Enhancement returns the preprocessing chain configuration.
func (c *Config) Enhancement() preprocess.Config {
	p := c.Preprocess
	return preprocess.Config{
		Grayscale:  p.Grayscale,
		Contrast:   p.Contrast,
		Sharpen:    p.Sharpen,
		Brightness: p.Brightness,
		Gamma:      p.Gamma,
		Margin:     p.Margin,
		MinHeight:  p.MinHeight,
	}
}

// Mapping returns the explicit column mapping, or nil when the identity
// mapping or header detection applies.
func (c *Config) Mapping() (*mapping.Mapping, error) {
	if len(c.Columns.Map) == 0 {
		return nil, nil
	}
	m, err := mapping.FromMap(c.Columns.Map)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delimiter returns the output field separator as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.Output.Delimiter)[0]
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
