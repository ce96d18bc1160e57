package config

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
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

// LoadEnv loads a .env file without overriding variables already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a service.
// Explicit paths win; otherwise the standard locations are searched.
func (cr *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.firstExisting(configSearchPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.firstExisting(envSearchPaths(serviceName))
	}

	return resolved
}

func (cr *Resolver) firstExisting(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// configSearchPaths lists config.yml candidates, most specific first.
func configSearchPaths(serviceName string) []string {
	paths := make([]string, 0, 9)
	for _, up := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", up, serviceName))
	}
	return append(paths,
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	)
}

// envSearchPaths lists .env candidates. A service specific .env.<name>
// anywhere beats a plain .env.
func envSearchPaths(serviceName string) []string {
	dirs := []string{
		"./cmd/" + serviceName,
		"./config",
		".",
		"..",
		"../..",
	}
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string // Only PREFIX_* variables are bound when set
	Viper      *viper.Viper
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

// WithEnvPrefix binds environment variables as PREFIX_KEY, e.g. SEQQ_TAKE or
// SEQQ_LOGGING_LEVEL.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(prefix, "_") }
}

// WithViper loads into an existing viper instance, typically one that
// already has command-line flags bound. Flags keep precedence over the
// environment and the config file.
func WithViper(v *viper.Viper) LoaderOption {
	return func(lc *LoaderConfig) { lc.Viper = v }
}

// LoadConfig loads configuration for a service into cfg, which must be a
// pointer to a struct. Sources in increasing precedence: config.yml, .env,
// process environment, bound flags.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.Viper == nil {
		lc.Viper = viper.New()
	}

	keys, err := configKeys(cfg)
	if err != nil {
		return err
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	return loadFromResolvedFiles(serviceName, cfg, keys, files, lc)
}

func loadFromResolvedFiles(serviceName string, cfg any, keys []string, files ResolvedFiles, lc LoaderConfig) error {
	v := lc.Viper
	log := logger.Get("config")

	// 1. YAML config (base configuration)
	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			log.Warn("config file not found", logger.Fields("path", files.ConfigFile))
		} else {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				log.Warn("failed to load config file", logger.Fields("path", files.ConfigFile, "error", err.Error()))
			}
		}
	}

	// 2. .env file, which only fills variables not already exported
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields("path", files.EnvFile, "error", err.Error()))
		}
	}

	// 3. Environment variables for every key the target struct declares
	for _, key := range keys {
		if err := v.BindEnv(key, envName(lc.EnvPrefix, key)); err != nil {
			return errors.InvalidConfig("cannot bind " + key).WithCause(err)
		}
	}

	// 4. Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidConfig("failed to unmarshal config for service " + serviceName).WithCause(err)
	}

	return nil
}

// envName maps a config key to its environment variable:
//
//	logging.no_color -> LOGGING_NO_COLOR
//	take (prefix SEQQ) -> SEQQ_TAKE
func envName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(prefix) + "_" + name
}

// configKeys lists the dotted viper keys of cfg's struct fields, following
// mapstructure tags. Squashed embedded structs contribute their keys at the
// parent level.
func configKeys(cfg any) ([]string, error) {
	t := reflect.TypeOf(cfg)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, errors.InvalidConfig(fmt.Sprintf("config target must be a pointer to a struct, got %T", cfg))
	}
	var keys []string
	collectKeys(t.Elem(), "", &keys)
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && strings.Contains(opts, "squash") {
			collectKeys(ft, prefix, keys)
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			collectKeys(ft, prefix+name+".", keys)
			continue
		}
		*keys = append(*keys, prefix+name)
	}
}
