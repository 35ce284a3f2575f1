// Package config loads the optional .envscan configuration file.
package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	// FileName is the config file name without extension. Any extension
	// viper understands is accepted (.yaml, .yml, .toml, .json).
	FileName = ".envscan"
	// EnvPrefix prefixes environment overrides, e.g. ENVSCAN_SCAN_MAX_DEPTH.
	EnvPrefix = "ENVSCAN"

	DefaultMaxDepth    = 10
	DefaultMaxFileSize = 2 << 20
)

// Config represents the envscan configuration file
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Ignores IgnoresConfig `mapstructure:"ignores"`

	// Path is the file the config was read from, empty when defaults are used.
	Path string `mapstructure:"-"`
}

// ScanConfig holds scan options. Empty Include means every file a known
// language recognizes; Exclude is added to the built-in exclusions.
type ScanConfig struct {
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	MaxDepth    int      `mapstructure:"max_depth"`
	Parallel    bool     `mapstructure:"parallel"`
	Workers     int      `mapstructure:"workers"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Secrets     bool     `mapstructure:"secrets"`
	// MinSeverity drops secret rules ranked below it: low, medium, high or critical.
	MinSeverity string `mapstructure:"min_severity"`
}

// IgnoresConfig contains ignore rules for environment variables
type IgnoresConfig struct {
	Missing []string `mapstructure:"missing"` // Variables to ignore when reporting as missing
	Folders []string `mapstructure:"folders"` // Folders whose usages never count as missing
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Include:     []string{},
			Exclude:     []string{},
			MaxDepth:    DefaultMaxDepth,
			Parallel:    true,
			MaxFileSize: DefaultMaxFileSize,
			MinSeverity: "low",
		},
		Ignores: IgnoresConfig{
			Missing: []string{},
			Folders: []string{},
		},
	}
}

// Load reads .envscan.* from rootPath. A missing file is not an error; the
// defaults are returned, still subject to ENVSCAN_* overrides.
func Load(rootPath string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("scan.include", defaults.Scan.Include)
	v.SetDefault("scan.exclude", defaults.Scan.Exclude)
	v.SetDefault("scan.max_depth", defaults.Scan.MaxDepth)
	v.SetDefault("scan.parallel", defaults.Scan.Parallel)
	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.max_file_size", defaults.Scan.MaxFileSize)
	v.SetDefault("scan.secrets", defaults.Scan.Secrets)
	v.SetDefault("scan.min_severity", defaults.Scan.MinSeverity)
	v.SetDefault("ignores.missing", defaults.Ignores.Missing)
	v.SetDefault("ignores.folders", defaults.Ignores.Folders)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.AddConfigPath(rootPath)

	resolved := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		resolved = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Scan.MaxFileSize < 0 {
		return nil, fmt.Errorf("scan.max_file_size must not be negative, got %d", cfg.Scan.MaxFileSize)
	}
	cfg.Path = resolved

	return &cfg, nil
}

// ShouldIgnoreMissing checks if a variable should be ignored when reporting as missing
func (c *Config) ShouldIgnoreMissing(varName string) bool {
	return slices.Contains(c.Ignores.Missing, varName)
}

// InIgnoredFolder reports whether relPath (slash separated, relative to the
// scan root) lies in one of the ignored folders. Folders match by path
// prefix ("src/config") or, when given without a slash, by any directory
// name on the path ("fixtures").
func (c *Config) InIgnoredFolder(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	dir := path.Dir(relPath)
	for _, folder := range c.Ignores.Folders {
		folder = strings.Trim(filepath.ToSlash(folder), "/")
		if folder == "" {
			continue
		}
		if strings.Contains(folder, "/") {
			if dir == folder || strings.HasPrefix(dir, folder+"/") {
				return true
			}
			continue
		}
		for _, part := range strings.Split(dir, "/") {
			if part == folder {
				return true
			}
		}
	}
	return false
}
