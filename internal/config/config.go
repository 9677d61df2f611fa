// Package config loads application configuration from config.yaml and the
// environment and owns the global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Vision VisionConfig `yaml:"vision" mapstructure:"vision"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds every threshold the validation and filtering stages
// use. Thresholds are explicit configuration passed into the engine's entry
// points, never package-level state; defaults are the tuned values the
// category weight tables assume.
type EngineConfig struct {
	// MinValidationScore is the overall score at which a comp's
	// validation verdict is valid.
	MinValidationScore float64 `yaml:"min_validation_score" mapstructure:"min_validation_score"`

	// ValidatedThreshold is the relevance score at which a comp is kept
	// at full weight by the set-level filter.
	ValidatedThreshold float64 `yaml:"validated_threshold" mapstructure:"validated_threshold"`

	// MarginalFloor is the lowest relevance score eligible for the
	// scarcity relaxation.
	MarginalFloor float64 `yaml:"marginal_floor" mapstructure:"marginal_floor"`

	// MarginalDiscount is the score multiplier applied to comps kept only
	// by the scarcity relaxation.
	MarginalDiscount float64 `yaml:"marginal_discount" mapstructure:"marginal_discount"`

	// MinValidatedComps is the validated-comp count below which the
	// scarcity relaxation activates.
	MinValidatedComps int `yaml:"min_validated_comps" mapstructure:"min_validated_comps"`

	// RecencyThresholdDays bounds how old a sold comp may be and still
	// count as recent.
	RecencyThresholdDays int `yaml:"recency_threshold_days" mapstructure:"recency_threshold_days"`

	// ZScoreThreshold is the z-score above which a price is an outlier.
	ZScoreThreshold float64 `yaml:"z_score_threshold" mapstructure:"z_score_threshold"`

	// ImageBatchSize bounds concurrent image-comparison calls.
	ImageBatchSize int `yaml:"image_batch_size" mapstructure:"image_batch_size"`

	// ImageVerifyThreshold is the similarity at which a keyword comp is
	// upgraded to image-verified.
	ImageVerifyThreshold float64 `yaml:"image_verify_threshold" mapstructure:"image_verify_threshold"`

	// ImagePartialThreshold is the similarity below which an image
	// comparison counts as a rejection.
	ImagePartialThreshold float64 `yaml:"image_partial_threshold" mapstructure:"image_partial_threshold"`

	// ImageVerifiedScore is the fixed relevance assigned on upgrade.
	ImageVerifiedScore float64 `yaml:"image_verified_score" mapstructure:"image_verified_score"`

	// ImageRejectScore is the relevance assigned on rejection.
	ImageRejectScore float64 `yaml:"image_reject_score" mapstructure:"image_reject_score"`

	// WeightOverridesPath optionally points at a YAML file of category
	// weight overrides.
	WeightOverridesPath string `yaml:"weight_overrides_path" mapstructure:"weight_overrides_path"`
}

// VisionConfig holds the image-comparison collaborator settings.
type VisionConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	Model         string  `yaml:"model" mapstructure:"model"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// StoreConfig configures the validation-run audit store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultEngine returns the engine thresholds the category weight tables
// were tuned against.
func DefaultEngine() EngineConfig {
	return EngineConfig{
		MinValidationScore:    0.70,
		ValidatedThreshold:    0.60,
		MarginalFloor:         0.25,
		MarginalDiscount:      0.50,
		MinValidatedComps:     5,
		RecencyThresholdDays:  90,
		ZScoreThreshold:       2.5,
		ImageBatchSize:        5,
		ImageVerifyThreshold:  0.80,
		ImagePartialThreshold: 0.50,
		ImageVerifiedScore:    0.85,
		ImageRejectScore:      0.20,
	}
}

// Load reads configuration from config.yaml, environment variables with the
// COMPS prefix, and built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := DefaultEngine()
	v.SetDefault("engine.min_validation_score", def.MinValidationScore)
	v.SetDefault("engine.validated_threshold", def.ValidatedThreshold)
	v.SetDefault("engine.marginal_floor", def.MarginalFloor)
	v.SetDefault("engine.marginal_discount", def.MarginalDiscount)
	v.SetDefault("engine.min_validated_comps", def.MinValidatedComps)
	v.SetDefault("engine.recency_threshold_days", def.RecencyThresholdDays)
	v.SetDefault("engine.z_score_threshold", def.ZScoreThreshold)
	v.SetDefault("engine.image_batch_size", def.ImageBatchSize)
	v.SetDefault("engine.image_verify_threshold", def.ImageVerifyThreshold)
	v.SetDefault("engine.image_partial_threshold", def.ImagePartialThreshold)
	v.SetDefault("engine.image_verified_score", def.ImageVerifiedScore)
	v.SetDefault("engine.image_reject_score", def.ImageRejectScore)
	v.SetDefault("vision.model", "claude-haiku-4-5-20251001")
	v.SetDefault("vision.rate_per_second", 2.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := ValidateEngine(cfg.Engine); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateEngine checks that engine thresholds are internally consistent.
func ValidateEngine(e EngineConfig) error {
	var errs []string

	for name, val := range map[string]float64{
		"min_validation_score":    e.MinValidationScore,
		"validated_threshold":     e.ValidatedThreshold,
		"marginal_floor":          e.MarginalFloor,
		"marginal_discount":       e.MarginalDiscount,
		"image_verify_threshold":  e.ImageVerifyThreshold,
		"image_partial_threshold": e.ImagePartialThreshold,
		"image_verified_score":    e.ImageVerifiedScore,
		"image_reject_score":      e.ImageRejectScore,
	} {
		if val < 0 || val > 1 {
			errs = append(errs, name+" must be between 0 and 1")
		}
	}

	if e.MarginalFloor >= e.ValidatedThreshold {
		errs = append(errs, "marginal_floor must be below validated_threshold")
	}
	if e.ImagePartialThreshold >= e.ImageVerifyThreshold {
		errs = append(errs, "image_partial_threshold must be below image_verify_threshold")
	}
	if e.ZScoreThreshold <= 0 {
		errs = append(errs, "z_score_threshold must be > 0")
	}
	if e.RecencyThresholdDays <= 0 {
		errs = append(errs, "recency_threshold_days must be > 0")
	}
	if e.ImageBatchSize <= 0 {
		errs = append(errs, "image_batch_size must be > 0")
	}
	if e.MinValidatedComps < 0 {
		errs = append(errs, "min_validated_comps must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: engine validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
