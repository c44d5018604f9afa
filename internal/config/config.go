package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/golden-orbit/internal/logger"
)

// Config holds the settings shared by the golden orbit binaries.
type Config struct {
	// ServerAddress is the gRPC address of orbit-server.
	ServerAddress string `yaml:"server_addr"`
	// Timeout bounds every RPC issued by orbit-ctl.
	Timeout time.Duration `yaml:"timeout"`
	// BeamlineFile lists the monitors controlled by the server.
	BeamlineFile string `yaml:"beamline_file"`
	// ReadingsFile is the snapshot served by the replay provider.
	// Live captures fail as unavailable when it is empty.
	ReadingsFile string `yaml:"readings_file"`
	// ReadingsInterval is the period of the current readings refresh.
	ReadingsInterval time.Duration `yaml:"readings_interval"`
	// OrbitDir is the directory relative load/save paths are resolved against.
	OrbitDir string `yaml:"orbit_dir"`
	// OrbitDisplayDir is the directory relative legacy .mat loads are
	// resolved against. Empty falls back to OrbitDir.
	OrbitDisplayDir string `yaml:"orbit_display_dir"`
	// PlotFile receives the rendered golden orbit curves. Empty disables rendering.
	PlotFile string `yaml:"plot_file"`
	// MetricsAddress is the HTTP address serving /metrics. Empty disables it.
	MetricsAddress string `yaml:"metrics_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "golden-orbit-settings.yaml"

	// DefaultBeamlineFilename is the default monitor list.
	DefaultBeamlineFilename = "beamline.yaml"

	// DefaultOrbitDir is the default directory for saved reference orbits.
	DefaultOrbitDir = "golden_orbits"

	// DefaultTimeout is the default duration for RPCs.
	DefaultTimeout = 5 * time.Second

	// DefaultReadingsInterval is the default period of the readings refresh.
	DefaultReadingsInterval = time.Second

	// DefaultLogLevel is used when log_level is empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the permission used for written files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is the permission used for created directories.
	DefaultDirPermissions = 0o750
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.ReadingsInterval <= 0 {
		settings.ReadingsInterval = DefaultReadingsInterval
	}

	if settings.BeamlineFile == "" {
		settings.BeamlineFile = DefaultBeamlineFilename
	}

	if settings.OrbitDir == "" {
		settings.OrbitDir = DefaultOrbitDir
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	if settings.MetricsAddress == "" {
		return nil
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
		return fmt.Errorf("invalid metrics address: %w", err)
	}

	return nil
}
