// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (EMBODY_ENGINE_FRAME_RATE).
const EnvPrefix = "EMBODY"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Interaction() InteractionConfig
	Locomotion() LocomotionConfig
	Metrics() MetricsConfig

	// Engine Setters
	SetEngineRealtime(bool)
	SetEngineMaxFrames(int)

	// Metrics Setters
	SetMetricsListenAddr(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	EngineCfg      EngineConfig      `mapstructure:"engine" yaml:"engine"`
	InteractionCfg InteractionConfig `mapstructure:"interaction" yaml:"interaction"`
	LocomotionCfg  LocomotionConfig  `mapstructure:"locomotion" yaml:"locomotion"`
	MetricsCfg     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig           { return c.EngineCfg }
func (c *Config) Interaction() InteractionConfig { return c.InteractionCfg }
func (c *Config) Locomotion() LocomotionConfig   { return c.LocomotionCfg }
func (c *Config) Metrics() MetricsConfig         { return c.MetricsCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetEngineRealtime(b bool)      { c.EngineCfg.Realtime = b }
func (c *Config) SetEngineMaxFrames(n int)      { c.EngineCfg.MaxFrames = n }
func (c *Config) SetMetricsListenAddr(a string) { c.MetricsCfg.ListenAddr = a }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig drives the frame loop.
type EngineConfig struct {
	// FrameRate is the number of simulation frames per simulated second.
	FrameRate int `mapstructure:"frame_rate" yaml:"frame_rate"`
	// MaxFrames bounds a run; zero means unbounded.
	MaxFrames int `mapstructure:"max_frames" yaml:"max_frames"`
	// Realtime paces frames against the wall clock instead of running flat out.
	Realtime     bool `mapstructure:"realtime" yaml:"realtime"`
	StopWhenIdle bool `mapstructure:"stop_when_idle" yaml:"stop_when_idle"`
	// Parallelism caps how many scenarios `run` steps at once.
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
}

// FrameDuration is the fixed simulated time step.
func (e EngineConfig) FrameDuration() time.Duration {
	if e.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(e.FrameRate)
}

// InteractionConfig holds the defaults applied to every new interaction.
type InteractionConfig struct {
	ReachDuration  time.Duration `mapstructure:"reach_duration" yaml:"reach_duration"`
	HoldDuration   time.Duration `mapstructure:"hold_duration" yaml:"hold_duration"`
	ReturnDuration time.Duration `mapstructure:"return_duration" yaml:"return_duration"`
	ReachCurve     string        `mapstructure:"reach_curve" yaml:"reach_curve"`
	ReturnCurve    string        `mapstructure:"return_curve" yaml:"return_curve"`
	UseLookAt      bool          `mapstructure:"use_look_at" yaml:"use_look_at"`
	// LookAtFactor scales the reach duration for the gaze request.
	LookAtFactor float64 `mapstructure:"look_at_factor" yaml:"look_at_factor"`
}

// LocomotionConfig holds the defaults for walking bodies.
type LocomotionConfig struct {
	Speed            float64 `mapstructure:"speed" yaml:"speed"`
	NearRadius       float64 `mapstructure:"near_radius" yaml:"near_radius"`
	ArrivalTolerance float64 `mapstructure:"arrival_tolerance" yaml:"arrival_tolerance"`
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	Namespace  string `mapstructure:"namespace" yaml:"namespace"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "embody")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.frame_rate", 60)
	v.SetDefault("engine.max_frames", 36000)
	v.SetDefault("engine.realtime", false)
	v.SetDefault("engine.stop_when_idle", true)
	v.SetDefault("engine.parallelism", 4)

	// -- Interaction --
	v.SetDefault("interaction.reach_duration", "1s")
	v.SetDefault("interaction.hold_duration", "100ms")
	v.SetDefault("interaction.return_duration", "1s")
	v.SetDefault("interaction.reach_curve", "ease_in_out")
	v.SetDefault("interaction.return_curve", "ease_in_out")
	v.SetDefault("interaction.use_look_at", true)
	v.SetDefault("interaction.look_at_factor", 0.75)

	// -- Locomotion --
	v.SetDefault("locomotion.speed", 1.4)
	v.SetDefault("locomotion.near_radius", 5.0)
	v.SetDefault("locomotion.arrival_tolerance", 0.05)

	// -- Metrics --
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen_addr", ":9464")
	v.SetDefault("metrics.namespace", "embody")
}

// NewViper returns a viper instance with defaults applied and EMBODY_*
// environment overrides bound.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.EngineCfg.FrameRate <= 0 {
		return fmt.Errorf("engine.frame_rate must be a positive integer")
	}
	if c.EngineCfg.MaxFrames < 0 {
		return fmt.Errorf("engine.max_frames must not be negative")
	}
	if c.EngineCfg.Parallelism <= 0 {
		return fmt.Errorf("engine.parallelism must be a positive integer")
	}
	if err := c.InteractionCfg.Validate(); err != nil {
		return fmt.Errorf("interaction configuration invalid: %w", err)
	}
	if err := c.LocomotionCfg.Validate(); err != nil {
		return fmt.Errorf("locomotion configuration invalid: %w", err)
	}
	if c.MetricsCfg.Enabled && c.MetricsCfg.ListenAddr == "" {
		return fmt.Errorf("metrics.listen_addr is required when metrics are enabled")
	}
	return nil
}

var knownCurves = map[string]bool{"": true, "linear": true, "ease_in": true, "ease_out": true, "ease_in_out": true}

// Validate checks the interaction defaults.
func (i *InteractionConfig) Validate() error {
	if i.ReachDuration < 0 || i.HoldDuration < 0 || i.ReturnDuration < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if !knownCurves[i.ReachCurve] {
		return fmt.Errorf("unknown reach_curve %q", i.ReachCurve)
	}
	if !knownCurves[i.ReturnCurve] {
		return fmt.Errorf("unknown return_curve %q", i.ReturnCurve)
	}
	if i.LookAtFactor < 0 {
		return fmt.Errorf("look_at_factor must not be negative")
	}
	return nil
}

// Validate checks the locomotion defaults.
func (l *LocomotionConfig) Validate() error {
	if l.Speed <= 0 {
		return fmt.Errorf("speed must be positive")
	}
	if l.NearRadius < 0 {
		return fmt.Errorf("near_radius must not be negative")
	}
	if l.ArrivalTolerance <= 0 {
		return fmt.Errorf("arrival_tolerance must be positive")
	}
	return nil
}
