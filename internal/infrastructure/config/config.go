package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for SoilSense Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Engine    EngineConfig    `yaml:"engine"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Namespace string              `yaml:"namespace"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
//
// Reconnection is deliberately simple: one attempt per disconnect event,
// after a fixed delay. A failed attempt waits for the next disconnect
// event rather than retrying on its own.
type MQTTReconnectConfig struct {
	DelaySeconds int `yaml:"delay_seconds"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (in seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket push channel settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains the optional reading archive settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// EngineConfig contains the sensor state and irrigation control settings.
type EngineConfig struct {
	// RetentionHours is the maximum age of readings kept in the history buffer.
	RetentionHours int `yaml:"retention_hours"`

	// MaxSamples is the hard capacity cap on the history buffer,
	// enforced regardless of reading age.
	MaxSamples int `yaml:"max_samples"`

	// CompactIntervalMinutes is how often expired readings are swept
	// out of the buffer, independent of traffic.
	CompactIntervalMinutes int `yaml:"compact_interval_minutes"`

	Detection    DetectionConfig    `yaml:"detection"`
	AutoWatering AutoWateringConfig `yaml:"auto_watering"`

	// ValveSettleSeconds is the time the valve is held open during a
	// watering cycle, between the open and close commands.
	ValveSettleSeconds int `yaml:"valve_settle_seconds"`
}

// DetectionConfig contains the watering detection heuristic parameters.
//
// The defaults (10-point rise, 5-minute grace) come from the deployed
// sensor installation and are kept configurable rather than re-derived.
type DetectionConfig struct {
	// DeltaThreshold is the minimum moisture rise between two consecutive
	// readings that classifies as a watering event.
	DeltaThreshold float64 `yaml:"delta_threshold"`

	// ReconcileGraceMinutes is how far back a pending manual/automatic
	// watering record can be and still absorb a detected moisture rise.
	ReconcileGraceMinutes int `yaml:"reconcile_grace_minutes"`
}

// AutoWateringConfig contains the automatic irrigation defaults.
type AutoWateringConfig struct {
	Enabled           bool    `yaml:"enabled"`
	MoistureThreshold float64 `yaml:"moisture_threshold"`
	CooldownMinutes   int     `yaml:"cooldown_minutes"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SOILSENSE_SECTION_KEY
// For example: SOILSENSE_MQTT_HOST, SOILSENSE_INFLUXDB_TOKEN
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "soilsense-core",
			},
			QoS:       1,
			Namespace: "soilsense",
			Reconnect: MQTTReconnectConfig{
				DelaySeconds: 5,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Engine: EngineConfig{
			RetentionHours:         12,
			MaxSamples:             1440,
			CompactIntervalMinutes: 10,
			Detection: DetectionConfig{
				DeltaThreshold:        10.0,
				ReconcileGraceMinutes: 5,
			},
			AutoWatering: AutoWateringConfig{
				Enabled:           false,
				MoistureThreshold: 30.0,
				CooldownMinutes:   30,
			},
			ValveSettleSeconds: 1,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SOILSENSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("SOILSENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SOILSENSE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("SOILSENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SOILSENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("SOILSENSE_MQTT_NAMESPACE"); v != "" {
		cfg.MQTT.Namespace = v
	}

	// API
	if v := os.Getenv("SOILSENSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("SOILSENSE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("SOILSENSE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Namespace == "" {
		errs = append(errs, "mqtt.namespace is required")
	}
	if strings.ContainsAny(c.MQTT.Namespace, "+#/") {
		errs = append(errs, "mqtt.namespace must not contain topic separators or wildcards")
	}
	if c.MQTT.Reconnect.DelaySeconds < 1 {
		errs = append(errs, "mqtt.reconnect.delay_seconds must be at least 1")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Engine validation
	if c.Engine.RetentionHours < 1 {
		errs = append(errs, "engine.retention_hours must be at least 1")
	}
	if c.Engine.MaxSamples < 1 {
		errs = append(errs, "engine.max_samples must be at least 1")
	}
	if c.Engine.CompactIntervalMinutes < 1 {
		errs = append(errs, "engine.compact_interval_minutes must be at least 1")
	}
	if c.Engine.Detection.DeltaThreshold <= 0 {
		errs = append(errs, "engine.detection.delta_threshold must be positive")
	}
	if c.Engine.Detection.ReconcileGraceMinutes < 0 {
		errs = append(errs, "engine.detection.reconcile_grace_minutes must not be negative")
	}
	if c.Engine.AutoWatering.MoistureThreshold < 0 {
		errs = append(errs, "engine.auto_watering.moisture_threshold must not be negative")
	}
	if c.Engine.AutoWatering.CooldownMinutes < 0 {
		errs = append(errs, "engine.auto_watering.cooldown_minutes must not be negative")
	}
	if c.Engine.ValveSettleSeconds < 0 {
		errs = append(errs, "engine.valve_settle_seconds must not be negative")
	}

	// InfluxDB validation (only when enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set SOILSENSE_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// ReconnectDelay returns the broker reconnect delay as a Duration.
func (c *MQTTConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.Reconnect.DelaySeconds) * time.Second
}

// RetentionPeriod returns the history retention period as a Duration.
func (c *EngineConfig) RetentionPeriod() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// CompactInterval returns the buffer compaction interval as a Duration.
func (c *EngineConfig) CompactInterval() time.Duration {
	return time.Duration(c.CompactIntervalMinutes) * time.Minute
}

// ReconcileGrace returns the watering reconciliation grace window as a Duration.
func (c *EngineConfig) ReconcileGrace() time.Duration {
	return time.Duration(c.Detection.ReconcileGraceMinutes) * time.Minute
}

// Cooldown returns the automatic watering cooldown as a Duration.
func (c *EngineConfig) Cooldown() time.Duration {
	return time.Duration(c.AutoWatering.CooldownMinutes) * time.Minute
}

// ValveSettle returns the valve settle time as a Duration.
func (c *EngineConfig) ValveSettle() time.Duration {
	return time.Duration(c.ValveSettleSeconds) * time.Second
}
