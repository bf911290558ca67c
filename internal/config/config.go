// Package config loads vecbuild's YAML configuration, generalized
// from the teacher's pkg/config: same viper-based Load/LoadFromFile
// shape, same ${VAR}/${VAR:-default} environment interpolation, same
// Validate-collects-all-errors style, now covering spec.md §6's
// remote_build.*/upload.* keys instead of the teacher's server/
// embedding/dedup/retriever sections.
package config

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is vecbuild's full configuration.
type Config struct {
	RemoteBuild RemoteBuildConfig `mapstructure:"remote_build"`
	Upload      UploadConfig      `mapstructure:"upload"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// RemoteBuildConfig holds the per-index eligibility gate and the
// BuildClient's endpoint pool and timing, from spec.md §6.
type RemoteBuildConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ThresholdBytes int64         `mapstructure:"threshold_bytes"`
	Repository     string        `mapstructure:"repository"`
	Endpoints      []string      `mapstructure:"endpoints"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	InitialDelay   time.Duration `mapstructure:"initial_delay"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
}

// UploadConfig holds RepositoryAccessor/S3-adapter tuning.
type UploadConfig struct {
	PartSizeBytes     int64 `mapstructure:"part_size_bytes"`
	BufferBytes       int   `mapstructure:"buffer_bytes"`
	ForceSingleStream bool  `mapstructure:"force_single_stream"`
	MaxParallelParts  int   `mapstructure:"max_parallel_parts"`
}

// TelemetryConfig holds tracing settings, reused verbatim from the
// teacher's pkg/telemetry.Config shape minus the OTLP endpoint/
// insecure fields that went with the dropped grpc exporter.
type TelemetryConfig struct {
	Tracing TracingConfig `mapstructure:"tracing"`
}

// TracingConfig configures internal/telemetry.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// MetricsConfig configures the stats.Registry's HTTP exposition.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// DefaultConfig returns a Config with sensible defaults, matching
// SPEC_FULL.md §6 and §5's stated defaults.
func DefaultConfig() *Config {
	return &Config{
		RemoteBuild: RemoteBuildConfig{
			Enabled:      false,
			Repository:   "",
			Timeout:      5 * time.Minute,
			PollInterval: 2 * time.Second,
			InitialDelay: 0,
			HTTPTimeout:  30 * time.Second,
		},
		Upload: UploadConfig{
			PartSizeBytes:    64 << 20,
			BufferBytes:      1 << 20,
			MaxParallelParts: runtime.NumCPU() * 2,
		},
		Telemetry: TelemetryConfig{
			Tracing: TracingConfig{
				Enabled:     false,
				Exporter:    "none",
				SampleRate:  1.0,
				ServiceName: "vecbuild",
			},
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
	}
}

// Load reads configuration from v and returns a validated Config.
// Environment variables in string fields are interpolated using
// ${VAR} / ${VAR:-default} syntax.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	interpolateConfig(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a specific config file and returns a validated
// Config.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(v)
}

// Validate checks cfg and returns a single error collecting every
// problem found, rather than failing on the first.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.RemoteBuild.Enabled && len(cfg.RemoteBuild.Endpoints) == 0 {
		errs = append(errs, "remote_build.endpoints: at least one endpoint is required when remote_build.enabled is true")
	}
	if cfg.RemoteBuild.ThresholdBytes < 0 {
		errs = append(errs, "remote_build.threshold_bytes: must be non-negative")
	}
	if cfg.RemoteBuild.Timeout < 0 {
		errs = append(errs, "remote_build.timeout: must be non-negative")
	}
	if cfg.RemoteBuild.PollInterval <= 0 && cfg.RemoteBuild.Enabled {
		errs = append(errs, "remote_build.poll_interval: must be positive when remote_build.enabled is true")
	}
	if (cfg.RemoteBuild.Username == "") != (cfg.RemoteBuild.Password == "") {
		errs = append(errs, "remote_build.username and remote_build.password: both or neither must be set")
	}

	if cfg.Upload.PartSizeBytes <= 0 {
		errs = append(errs, "upload.part_size_bytes: must be positive")
	}
	if cfg.Upload.MaxParallelParts <= 0 {
		errs = append(errs, "upload.max_parallel_parts: must be positive")
	}

	validExporters := map[string]bool{"stdout": true, "none": true, "": true}
	if !validExporters[cfg.Telemetry.Tracing.Exporter] {
		errs = append(errs, fmt.Sprintf("telemetry.tracing.exporter: unsupported exporter %q (supported: stdout, none)", cfg.Telemetry.Tracing.Exporter))
	}
	if cfg.Telemetry.Tracing.SampleRate < 0 || cfg.Telemetry.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("telemetry.tracing.sample_rate: must be between 0 and 1, got %f", cfg.Telemetry.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnv replaces ${VAR} and ${VAR:-default} patterns in s
// with the corresponding environment variable values.
func InterpolateEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		if defaultVal != "" {
			return defaultVal
		}
		return match
	})
}

func interpolateConfig(cfg *Config) {
	cfg.RemoteBuild.Repository = InterpolateEnv(cfg.RemoteBuild.Repository)
	cfg.RemoteBuild.Username = InterpolateEnv(cfg.RemoteBuild.Username)
	cfg.RemoteBuild.Password = InterpolateEnv(cfg.RemoteBuild.Password)
	for i, ep := range cfg.RemoteBuild.Endpoints {
		cfg.RemoteBuild.Endpoints[i] = InterpolateEnv(ep)
	}
	cfg.Telemetry.Tracing.Exporter = InterpolateEnv(cfg.Telemetry.Tracing.Exporter)
	cfg.Telemetry.Tracing.ServiceName = InterpolateEnv(cfg.Telemetry.Tracing.ServiceName)
	cfg.Metrics.ListenAddr = InterpolateEnv(cfg.Metrics.ListenAddr)
}

// GenerateTemplate returns a YAML template with every configuration
// key set to its DefaultConfig value, suitable for writing to a
// vecbuild.yaml file. Values are read off DefaultConfig() rather than
// duplicated as literals so the two can never drift apart — SPEC_FULL
// .md §8 requires Load(GenerateTemplate()) to round-trip to
// DefaultConfig() exactly, including machine-dependent defaults like
// upload.max_parallel_parts (runtime.NumCPU()*2).
func GenerateTemplate() string {
	cfg := DefaultConfig()
	return fmt.Sprintf(`# vecbuild configuration

remote_build:
  enabled: %t
  threshold_bytes: %d
  repository: %q
  endpoints: []
    # - https://build-1.internal:8443
  timeout: %s
  poll_interval: %s
  initial_delay: %s
  http_timeout: %s
  username: %q
  password: %q
    # - ${VECBUILD_REMOTE_BUILD_PASSWORD}

upload:
  part_size_bytes: %d
  buffer_bytes: %d
  force_single_stream: %t
  max_parallel_parts: %d

telemetry:
  tracing:
    enabled: %t
    exporter: %s       # stdout or none
    sample_rate: %v
    service_name: %s

metrics:
  listen_addr: %q
`,
		cfg.RemoteBuild.Enabled,
		cfg.RemoteBuild.ThresholdBytes,
		cfg.RemoteBuild.Repository,
		cfg.RemoteBuild.Timeout,
		cfg.RemoteBuild.PollInterval,
		cfg.RemoteBuild.InitialDelay,
		cfg.RemoteBuild.HTTPTimeout,
		cfg.RemoteBuild.Username,
		cfg.RemoteBuild.Password,
		cfg.Upload.PartSizeBytes,
		cfg.Upload.BufferBytes,
		cfg.Upload.ForceSingleStream,
		cfg.Upload.MaxParallelParts,
		cfg.Telemetry.Tracing.Enabled,
		cfg.Telemetry.Tracing.Exporter,
		cfg.Telemetry.Tracing.SampleRate,
		cfg.Telemetry.Tracing.ServiceName,
		cfg.Metrics.ListenAddr,
	)
}
