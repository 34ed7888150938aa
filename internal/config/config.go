// Package config loads server defaults from flags, environment and an optional
// config file.
//
// Precedence, highest first: values set explicitly on the viper instance (CLI
// flags bound by cmd/spots), SPOTS_* environment variables, the config file,
// built-in defaults. Nested keys map to environment variables with "." replaced
// by "_", e.g. box.lightness_min -> SPOTS_BOX_LIGHTNESS_MIN.
package config

import (
	"fmt"
	"strings"

	"github.com/ironsheep/white-spot-mcp/internal/analysis"
	"github.com/ironsheep/white-spot-mcp/internal/spots"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SPOTS"

// Keys understood by Load.
const (
	KeyLogLevel      = "log_level"
	KeyStrategy      = "strategy"
	KeyMarkerColor   = "marker_color"
	KeyPreviewSize   = "preview_size"
	KeyLightnessMin  = "box.lightness_min"
	KeyATolerance    = "box.a_tolerance"
	KeyBTolerance    = "box.b_tolerance"
	KeyReferenceL    = "delta.reference.l"
	KeyReferenceA    = "delta.reference.a"
	KeyReferenceB    = "delta.reference.b"
	KeyMaxDistance   = "delta.max_distance"
	KeyMetric        = "delta.metric"
	KeyExportDir     = "export.dir"
	KeyAnnotatedName = "export.annotated_name"
	KeyBinaryName    = "export.binary_name"
)

// Config is the resolved runtime configuration.
type Config struct {
	LogLevel string
	Defaults analysis.Defaults
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// New returns a viper instance with built-in defaults and environment binding.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	d := analysis.DefaultDefaults()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStrategy, string(d.Strategy))
	v.SetDefault(KeyMarkerColor, d.Marker)
	v.SetDefault(KeyPreviewSize, d.PreviewSize)
	v.SetDefault(KeyLightnessMin, d.Box.LightnessMin)
	v.SetDefault(KeyATolerance, d.Box.ATolerance)
	v.SetDefault(KeyBTolerance, d.Box.BTolerance)
	v.SetDefault(KeyReferenceL, d.Delta.Reference.L)
	v.SetDefault(KeyReferenceA, d.Delta.Reference.A)
	v.SetDefault(KeyReferenceB, d.Delta.Reference.B)
	v.SetDefault(KeyMaxDistance, d.Delta.MaxDistance)
	v.SetDefault(KeyMetric, string(d.Delta.Metric))
	v.SetDefault(KeyExportDir, d.OutputDir)
	v.SetDefault(KeyAnnotatedName, d.AnnotatedName)
	v.SetDefault(KeyBinaryName, d.BinaryName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file at path (YAML, JSON or TOML by extension;
// "~" is expanded) into v and resolves the configuration.
//
// Thresholds are validated here, so a bad config file fails at startup with
// spots.ErrInvalidConfig instead of on the first request.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", expanded, err)
		}
	}

	kind, err := spots.ParseKind(v.GetString(KeyStrategy))
	if err != nil {
		return nil, err
	}
	metric, err := spots.ParseMetric(v.GetString(KeyMetric))
	if err != nil {
		return nil, err
	}

	defaults := analysis.Defaults{
		Strategy: kind,
		Box: spots.BoxConfig{
			LightnessMin: v.GetFloat64(KeyLightnessMin),
			ATolerance:   v.GetFloat64(KeyATolerance),
			BTolerance:   v.GetFloat64(KeyBTolerance),
		},
		Delta: spots.DeltaConfig{
			Reference: spots.Lab{
				L: v.GetFloat64(KeyReferenceL),
				A: v.GetFloat64(KeyReferenceA),
				B: v.GetFloat64(KeyReferenceB),
			},
			MaxDistance: v.GetFloat64(KeyMaxDistance),
			Metric:      metric,
		},
		Marker:        v.GetString(KeyMarkerColor),
		OutputDir:     v.GetString(KeyExportDir),
		AnnotatedName: v.GetString(KeyAnnotatedName),
		BinaryName:    v.GetString(KeyBinaryName),
		PreviewSize:   v.GetInt(KeyPreviewSize),
	}

	if _, err := spots.NewBox(defaults.Box); err != nil {
		return nil, err
	}
	if _, err := spots.NewDelta(defaults.Delta); err != nil {
		return nil, err
	}

	return &Config{
		LogLevel: v.GetString(KeyLogLevel),
		Defaults: defaults,
	}, nil
}
