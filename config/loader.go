package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct .env file path (optional)
	EnvPrefix  string // Environment variable prefix (default: name)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Load loads configuration for name into the provided cfg struct. It
// searches for config.yml and .env files in standard locations, binds
// prefixed environment variables, and unmarshals the result into cfg.
func Load(name string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = name
	}

	if lc.ConfigFile == "" {
		lc.ConfigFile = findFile(lc.FileSystem, "config.yml")
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFile(lc.FileSystem, ".env")
	}

	v := viper.New()

	// 1. YAML config file is the base layer.
	if lc.ConfigFile != "" && lc.FileSystem.Exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", lc.ConfigFile, err)
		}
	}

	// 2. .env file feeds the process environment.
	if lc.EnvFile != "" && lc.FileSystem.Exists(lc.EnvFile) {
		if err := lc.FileSystem.LoadEnv(lc.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", lc.EnvFile, err)
		}
	}

	// 3. Prefixed environment variables override everything.
	bindEnvVars(v, lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshalling config for %s: %w", name, err)
	}
	return nil
}

// findFile searches for fileName in the working directory and its parents,
// then under config/.
func findFile(fs FileSystem, fileName string) string {
	candidates := []string{
		fileName,
		fmt.Sprintf("config/%s", fileName),
		fmt.Sprintf("../%s", fileName),
		fmt.Sprintf("../config/%s", fileName),
	}
	for _, path := range candidates {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// bindEnvVars maps PREFIX_SECTION_KEY environment variables to viper keys.
// PARMAP_BATCH_SIZE binds to batch_size; PARMAP_LOGGING_LEVEL binds to
// logging.level and logging_level.
func bindEnvVars(v *viper.Viper, prefix string) {
	upperPrefix := strings.ToUpper(prefix) + "_"
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], upperPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], upperPrefix))
		for _, variant := range keyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// keyVariants returns the viper key spellings an env var can bind to.
//
//	logging_level -> [logging_level, logging.level, logging.level_?]
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	variants := []string{key}
	if len(parts) > 1 {
		variants = append(variants, strings.ReplaceAll(key, "_", "."))
		// First segment as section, rest joined: telemetry.sample_rate
		variants = append(variants, parts[0]+"."+strings.Join(parts[1:], "_"))
	}
	return variants
}
