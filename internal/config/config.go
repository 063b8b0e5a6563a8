// Package config loads ui-inventory settings from YAML and the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables. The merged result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/ocr"
	"github.com/ironsheep/ui-inventory-mcp/internal/validation"
)

// Environment variables read by Load.
const (
	EnvLogLevel    = "UI_INVENTORY_LOG_LEVEL"
	EnvStrategy    = "UI_INVENTORY_STRATEGY"
	EnvHTTPAddr    = "UI_INVENTORY_HTTP_ADDR"
	EnvFixturesDir = "UI_INVENTORY_FIXTURES_DIR"
	EnvWorkers     = "UI_INVENTORY_WORKERS"
	EnvCacheSize   = "UI_INVENTORY_CACHE_SIZE"
	EnvOCR         = "UI_INVENTORY_OCR"
	EnvTessdata    = "TESSDATA_PREFIX"
)

var validate = validator.New()

// Config is the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Detection  DetectionConfig  `yaml:"detection"`
	OCR        OCRConfig        `yaml:"ocr"`
	Validation ValidationConfig `yaml:"validation"`
	Batch      BatchConfig      `yaml:"batch"`
	Cache      CacheConfig      `yaml:"cache"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// LogConfig selects the zap level. Development switches to the console
// encoder with caller and stack details.
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// DetectionConfig holds detector settings shared by both strategies, plus
// the classifier thresholds of each. Strategy is the default when a call does
// not name one.
type DetectionConfig struct {
	Strategy        string                    `yaml:"strategy" validate:"oneof=edge similarity"`
	Extractor       detection.ExtractorConfig `yaml:"extractor"`
	Thresholds      ThresholdsConfig          `yaml:"thresholds"`
	PaletteSize     int                       `yaml:"palette_size" validate:"gte=0,lte=32"`
	ConfidenceFloor float64                   `yaml:"confidence_floor" validate:"gte=0,lte=1"`
	StateTypes      []string                  `yaml:"state_types" validate:"dive,oneof=button card input nav-item container unknown"`
	Timeout         time.Duration             `yaml:"timeout" validate:"gte=0"`
	OracleTimeout   time.Duration             `yaml:"oracle_timeout" validate:"gte=0"`
}

// ThresholdsConfig holds the classifier rules per strategy. Fields left out
// of the YAML keep their built-in values.
type ThresholdsConfig struct {
	Edge       detection.ClassifierThresholds `yaml:"edge"`
	Similarity detection.ClassifierThresholds `yaml:"similarity"`
}

// For returns the thresholds configured for s.
func (t ThresholdsConfig) For(s detection.Strategy) detection.ClassifierThresholds {
	if s == detection.StrategySimilarity {
		return t.Similarity
	}
	return t.Edge
}

// OCRConfig enables the Tesseract oracles. When disabled, text presence is
// always estimated from geometry and typography uses the default scale.
type OCRConfig struct {
	Enabled    bool `yaml:"enabled"`
	ocr.Config `yaml:",inline"`
}

// ValidationConfig points at extra fixture files and sets the tolerances.
// FixturesDir is read on top of the built-in catalog; empty means none.
type ValidationConfig struct {
	FixturesDir string               `yaml:"fixtures_dir"`
	Tolerance   validation.Tolerance `yaml:"tolerance"`
}

// BatchConfig bounds parallel detections in batch runs.
type BatchConfig struct {
	Workers int `yaml:"workers" validate:"gte=1,lte=64"`
}

// CacheConfig sizes the decoded image cache. Size is a count of buffers;
// zero disables caching.
type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=0,lte=4096"`
}

// HTTPConfig configures the serve command. MaxUploadBytes of zero removes
// the body limit.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := detection.DefaultOptions(detection.StrategyEdge)
	stateTypes := make([]string, len(opts.StateTypes))
	for i, t := range opts.StateTypes {
		stateTypes[i] = string(t)
	}
	return Config{
		Log: LogConfig{Level: "info"},
		Detection: DetectionConfig{
			Strategy:        string(detection.StrategyEdge),
			Extractor:       opts.Extractor,
			ConfidenceFloor: opts.ConfidenceFloor,
			StateTypes:      stateTypes,
			Timeout:         opts.Timeout,
			OracleTimeout:   opts.OracleTimeout,
			Thresholds: ThresholdsConfig{
				Edge:       detection.EdgeThresholds(),
				Similarity: detection.SimilarityThresholds(),
			},
		},
		OCR:        OCRConfig{Enabled: true, Config: ocr.DefaultConfig()},
		Validation: ValidationConfig{Tolerance: validation.DefaultTolerance()},
		Batch:      BatchConfig{Workers: 4},
		Cache:      CacheConfig{Size: 16},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			MaxUploadBytes:  32 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error; an empty path skips
// the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Detection.Strategy = getEnv(EnvStrategy, c.Detection.Strategy)
	c.HTTP.Addr = getEnv(EnvHTTPAddr, c.HTTP.Addr)
	c.Validation.FixturesDir = getEnv(EnvFixturesDir, c.Validation.FixturesDir)
	c.OCR.TessdataPrefix = getEnv(EnvTessdata, c.OCR.TessdataPrefix)

	if v := getEnv(EnvWorkers, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Batch.Workers = n
	}
	if v := getEnv(EnvCacheSize, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheSize, err)
		}
		c.Cache.Size = n
	}
	if v := getEnv(EnvOCR, ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOCR, err)
		}
		c.OCR.Enabled = b
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DetectionOptions converts the detection section into detector options.
func (c Config) DetectionOptions() (detection.Options, error) {
	s, err := detection.ParseStrategy(c.Detection.Strategy)
	if err != nil {
		return detection.Options{}, err
	}
	return c.DetectionOptionsFor(s), nil
}

// DetectionOptionsFor is DetectionOptions with the strategy overridden.
func (c Config) DetectionOptionsFor(s detection.Strategy) detection.Options {
	opts := detection.DefaultOptions(s)
	opts.Extractor = c.Detection.Extractor
	thresholds := c.Detection.Thresholds.For(s)
	opts.Thresholds = &thresholds
	if c.Detection.PaletteSize > 0 {
		opts.PaletteSize = c.Detection.PaletteSize
	}
	opts.ConfidenceFloor = c.Detection.ConfidenceFloor
	opts.StateTypes = make([]detection.Type, len(c.Detection.StateTypes))
	for i, t := range c.Detection.StateTypes {
		opts.StateTypes[i] = detection.Type(t)
	}
	opts.Timeout = c.Detection.Timeout
	opts.OracleTimeout = c.Detection.OracleTimeout
	return opts
}
