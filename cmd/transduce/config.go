package main

import (
	"fmt"
	"strings"

	"github.com/kbukum/transducekit/config"
	"github.com/kbukum/transducekit/encryption"
	"github.com/kbukum/transducekit/kafka"
	"github.com/kbukum/transducekit/observability"
	"github.com/kbukum/transducekit/redis"
	"github.com/kbukum/transducekit/resilience"
	"github.com/kbukum/transducekit/server"
)

const serviceName = "transduce"

// AppConfig is the configuration of the transduce binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Plans   PlansConfig                `yaml:"plans" mapstructure:"plans"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	Server  server.Config              `yaml:"server" mapstructure:"server"`
	Redis   redis.Config               `yaml:"redis" mapstructure:"redis"`
	Kafka   kafka.Config               `yaml:"kafka" mapstructure:"kafka"`

	// Encryption seals run records stored in Redis.
	Encryption encryption.Config `yaml:"encryption" mapstructure:"encryption"`

	// Retry governs reads from redis and kafka inputs.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// PlansConfig lists the directories plan definitions are loaded from.
type PlansConfig struct {
	Dirs []string `yaml:"dirs" mapstructure:"dirs"`
}

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	if len(c.Plans.Dirs) == 0 {
		c.Plans.Dirs = []string{"plans"}
	}
	c.Server.ApplyDefaults()
	if c.Redis.Enabled {
		c.Redis.ApplyDefaults()
	}
	if c.Kafka.Enabled {
		c.Kafka.ApplyDefaults()
	}
	c.Encryption.ApplyDefaults()
	c.Retry.ApplyDefaults()

	tracing := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = tracing.Endpoint
		c.Tracing.Insecure = true
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = tracing.SampleRate
	}
	metrics := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = metrics.Endpoint
		c.Metrics.Insecure = true
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = metrics.Interval
	}
	for _, svc := range []*string{&c.Tracing.ServiceName, &c.Metrics.ServiceName} {
		if *svc == "" {
			*svc = c.Name
		}
	}
	for _, env := range []*string{&c.Tracing.Environment, &c.Metrics.Environment} {
		if *env == "" {
			*env = c.Environment
		}
	}
	for _, ver := range []*string{&c.Tracing.ServiceVersion, &c.Metrics.ServiceVersion} {
		if *ver == "" {
			*ver = c.Version
		}
	}
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	if err := c.Encryption.Validate(); err != nil {
		return err
	}
	return nil
}

// loadConfig reads config.yml/.env and TRANSDUCE_* variables, then applies
// flag overrides.
func loadConfig(path, plans string) (*AppConfig, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if plans != "" {
		cfg.Plans.Dirs = strings.Split(plans, ",")
	}
	return &cfg, nil
}
