package gen

import (
	"errors"
	"maps"
	"runtime"

	"go.uber.org/zap"
)

// Config configures an Orchestrator.
type Config struct {
	// Naming is the companion naming policy.
	Naming Naming
	// Builders run in this order for every source type.
	Builders []Builder
	// Emitter receives every generated declaration.
	Emitter Emitter
	// Registry is the name registry shared by all pipelines. A fresh
	// registry is used when nil.
	Registry *Registry
	// Logger receives pipeline state transitions.
	Logger *zap.Logger
	// Workers bounds the number of source types generated concurrently.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithNaming replaces the naming policy.
func WithNaming(n Naming) Option {
	return func(c *Config) error {
		if n.Target == "" {
			return NewConfigError("Target", nil, "companion package cannot be empty")
		}
		c.Naming = n.Clone()
		return nil
	}
}

// WithSuffix sets the name suffix of one role.
func WithSuffix(role Role, suffix string) Option {
	return func(c *Config) error {
		if role == "" {
			return NewConfigError("Suffixes", suffix, "role cannot be empty")
		}
		if c.Naming.Suffixes == nil {
			c.Naming.Suffixes = make(map[Role]string)
		}
		c.Naming.Suffixes[role] = suffix
		return nil
	}
}

// WithSuffixes sets the name suffixes of several roles.
func WithSuffixes(suffixes map[Role]string) Option {
	return func(c *Config) error {
		if c.Naming.Suffixes == nil {
			c.Naming.Suffixes = make(map[Role]string)
		}
		maps.Copy(c.Naming.Suffixes, suffixes)
		return nil
	}
}

// WithTarget sets the companion package path relative to the source package.
func WithTarget(target string) Option {
	return func(c *Config) error {
		if target == "" {
			return NewConfigError("Target", nil, "companion package cannot be empty")
		}
		c.Naming.Target = target
		return nil
	}
}

// WithBuilders appends builders to the pipeline.
func WithBuilders(builders ...Builder) Option {
	return func(c *Config) error {
		for _, b := range builders {
			if b == nil {
				return NewConfigError("Builders", nil, "builder cannot be nil")
			}
		}
		c.Builders = append(c.Builders, builders...)
		return nil
	}
}

// WithEmitter sets the emitter.
func WithEmitter(e Emitter) Option {
	return func(c *Config) error {
		if e == nil {
			return NewConfigError("Emitter", nil, "emitter cannot be nil")
		}
		c.Emitter = e
		return nil
	}
}

// WithRegistry sets the name registry, so several orchestrators can share
// one namespace.
func WithRegistry(r *Registry) Option {
	return func(c *Config) error {
		if r == nil {
			return NewConfigError("Registry", nil, "registry cannot be nil")
		}
		c.Registry = r
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithWorkers bounds concurrent pipelines in GenerateAll.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the default naming policy and the
// given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Naming:  DefaultNaming(),
		Workers: runtime.GOMAXPROCS(0),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
