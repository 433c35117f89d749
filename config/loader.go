package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file checks the resolver needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a dotenv file without overriding variables already set.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// ResolvedFiles contains the config and env file paths chosen for a load.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolveFiles returns explicit paths when given, otherwise the first match
// from the standard search locations.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(serviceName))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, name := range []string{"config.yml", "config.yaml"} {
		paths = append(paths,
			filepath.Join("cmd", serviceName, name),
			filepath.Join("config", name),
			name,
		)
	}
	return paths
}

func envCandidates(serviceName string) []string {
	return []string{
		filepath.Join("cmd", serviceName, ".env"),
		".env." + serviceName,
		".env",
	}
}

// LoaderConfig holds dependencies and optional overrides for LoadConfig.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
	Defaults   map[string]any
}

// LoaderOption is a functional option for LoadConfig.
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

// WithEnvPrefix overrides the environment prefix, which defaults to the
// upper-cased service name.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithDefaults registers default values by dotted key.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// LoadConfig loads configuration for serviceName into cfg.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = envPrefix(serviceName)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

func envPrefix(serviceName string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(serviceName))
}

// bindEnv sets every PREFIX_* variable under all dotted spellings of its key,
// since an underscore may separate two levels or belong to a field name.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	p := prefix + "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, p) {
			continue
		}
		for _, variant := range keyVariants(strings.ToLower(strings.TrimPrefix(key, p))) {
			v.Set(variant, value)
		}
	}
}

// keyVariants expands "a_b_c" to a_b_c, a.b_c, a_b.c and a.b.c.
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	if len(parts) > 8 {
		return []string{key, strings.ReplaceAll(key, "_", ".")}
	}
	variants := make([]string, 0, 1<<(len(parts)-1))
	for mask := 0; mask < 1<<(len(parts)-1); mask++ {
		var b strings.Builder
		b.WriteString(parts[0])
		for i, part := range parts[1:] {
			if mask&(1<<i) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(part)
		}
		variants = append(variants, b.String())
	}
	return variants
}
