// Package config loads the application configuration file.
//
// The file is TOML with one table per concern:
//
//	[container]
//	dims = [120.0, 80.0, 100.0]
//
//	[placement]
//	support_threshold = 1.0
//	epsilon = 1e-6
//	order = "volume-desc"
//	max_attempts = 0
//
//	[cache]
//	backend = "file"    # file | redis | none
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "file"    # file | sqlite | mongo
//	sqlite_path = "runs.db"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_db = "cratestack"
//
//	[serve]
//	addr = ":8080"
//
// Every table and key is optional. Optional numeric keys use pointer
// fields so an omitted key and an explicit zero stay distinguishable.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// Config is the decoded application configuration.
type Config struct {
	Container ContainerConfig `toml:"container"`
	Placement PlacementConfig `toml:"placement"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
	Serve     ServeConfig     `toml:"serve"`
}

// ContainerConfig sets the default container dimensions.
type ContainerConfig struct {
	Dims []float64 `toml:"dims"`
}

// PlacementConfig sets default packing parameters.
type PlacementConfig struct {
	SupportThreshold *float64 `toml:"support_threshold"`
	Epsilon          *float64 `toml:"epsilon"`
	Order            string   `toml:"order"`
	MaxAttempts      *int     `toml:"max_attempts"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// StoreConfig selects the run store backend.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	SQLitePath string `toml:"sqlite_path"`
	MongoURI   string `toml:"mongo_uri"`
	MongoDB    string `toml:"mongo_db"`
}

// ServeConfig sets HTTP server options.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Cache: CacheConfig{Backend: "file"},
		Store: StoreConfig{Backend: "file"},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// Load reads and validates the TOML file at path. Unknown keys are
// rejected so typos surface instead of silently using defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeIOFailed, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if un := md.Undecoded(); len(un) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"config %s: unknown key %q", path, un[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault behaves like [Load] but returns the defaults when path
// is empty or the file does not exist. Use it for the optional
// user-level config; use Load when the user named a file explicitly.
func LoadDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return &cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		return &cfg, nil
	}
	return Load(path)
}

var (
	validCacheBackends = map[string]bool{"": true, "file": true, "redis": true, "none": true}
	validStoreBackends = map[string]bool{"": true, "file": true, "sqlite": true, "mongo": true}
)

// Validate checks field values. It does not fill defaults; merge
// results with [Config.PackConfig] and the backend constructors.
func (c *Config) Validate() error {
	if n := len(c.Container.Dims); n != 0 && n != 3 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"container.dims needs exactly 3 values, got %d", n)
	}
	for _, d := range c.Container.Dims {
		if d <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig,
				"container.dims must be positive, got %v", d)
		}
	}

	if v := c.Placement.SupportThreshold; v != nil && (*v <= 0 || *v > 1) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"placement.support_threshold must be in (0, 1], got %v", *v)
	}
	if v := c.Placement.Epsilon; v != nil && *v <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"placement.epsilon must be positive, got %v", *v)
	}
	if v := c.Placement.MaxAttempts; v != nil && *v < 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"placement.max_attempts must not be negative, got %d", *v)
	}
	if c.Placement.Order != "" {
		if _, err := pack.ParseOrderPolicy(c.Placement.Order); err != nil {
			return err
		}
	}

	if !validCacheBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend must be file, redis, or none, got %q", c.Cache.Backend)
	}
	if !validStoreBackends[c.Store.Backend] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"store.backend must be file, sqlite, or mongo, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig,
			"store.mongo_uri is required for the mongo backend")
	}

	return nil
}

// PackConfig merges the container and placement tables into a packing
// configuration, filling defaults for everything left unset.
func (c *Config) PackConfig() (pack.Config, error) {
	cfg := pack.DefaultConfig()
	if len(c.Container.Dims) == 3 {
		cfg.Container = geom.Vec3{
			X: c.Container.Dims[0],
			Y: c.Container.Dims[1],
			Z: c.Container.Dims[2],
		}
	}
	if v := c.Placement.SupportThreshold; v != nil {
		cfg.SupportThreshold = *v
	}
	if v := c.Placement.Epsilon; v != nil {
		cfg.Epsilon = *v
	}
	if c.Placement.Order != "" {
		cfg.Order = pack.OrderPolicy(c.Placement.Order)
	}
	if v := c.Placement.MaxAttempts; v != nil {
		cfg.MaxAttempts = *v
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return pack.Config{}, err
	}
	return cfg, nil
}
