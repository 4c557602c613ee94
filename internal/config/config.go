package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the room-control binaries.
type Config struct {
	// GroupID prefixes every bus topic of this installation.
	GroupID string `yaml:"group_id"`
	// Broker configures the MQTT bus connection.
	Broker BrokerConfig `yaml:"broker"`
	// Relay configures the point-to-point channel to the control central.
	Relay RelayConfig `yaml:"relay"`
	// Liveness configures disconnect detection.
	Liveness LivenessConfig `yaml:"liveness"`
	// Alarm configures intrusion handling.
	Alarm AlarmConfig `yaml:"alarm"`
	// Metrics configures the time-series sink.
	Metrics MetricsConfig `yaml:"metrics"`
	// Pricing configures actuator power ratings and the energy tariff.
	Pricing PricingConfig `yaml:"pricing"`
	// Log configures the global logger.
	Log LogConfig `yaml:"log"`
	// BandsFile is the path to the comfort-band file.
	BandsFile string `yaml:"bands_file"`
	// Workers is the number of ingestion shards.
	Workers int `yaml:"workers"`
}

// BrokerConfig holds MQTT connection parameters.
type BrokerConfig struct {
	// URL is the broker address, e.g. tcp://127.0.0.1:1883.
	URL string `yaml:"url"`
	// Username is optional.
	Username string `yaml:"username"`
	// Password is optional.
	Password string `yaml:"password"`
	// QoS is used for subscriptions and publications.
	QoS byte `yaml:"qos"`
	// ConnectTimeout bounds the initial connection and each publish.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// RelayConfig holds the gRPC relay parameters.
type RelayConfig struct {
	// Address is the control central host:port.
	Address string `yaml:"address"`
	// Timeout bounds every send attempt.
	Timeout time.Duration `yaml:"timeout"`
	// Attempts is the total number of tries per directive.
	Attempts int `yaml:"attempts"`
	// Backoff is the pause between attempts.
	Backoff time.Duration `yaml:"backoff"`
	// QueueSize bounds the directives waiting to be relayed.
	QueueSize int `yaml:"queue_size"`
}

// LivenessConfig holds the disconnect detection parameters.
type LivenessConfig struct {
	// Window is the silence after which a room is considered disconnected.
	Window time.Duration `yaml:"window"`
	// SweepInterval is the period of the liveness sweep.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AlarmConfig holds intrusion handling parameters.
type AlarmConfig struct {
	// StateFile persists the arm/disarm switch across restarts.
	StateFile string `yaml:"state_file"`
	// EvaluateRejected lets readings from unsupported sensors still raise
	// intrusion alarms. Unset means enabled.
	EvaluateRejected *bool `yaml:"evaluate_rejected,omitempty"`
}

// EvaluatesRejected reports whether rejected readings go through intrusion detection.
func (a AlarmConfig) EvaluatesRejected() bool {
	return a.EvaluateRejected == nil || *a.EvaluateRejected
}

// MetricsConfig selects and configures the metrics sink.
type MetricsConfig struct {
	// Driver is one of log, postgres or redis.
	Driver string `yaml:"driver"`
	// DSN is the Postgres connection string.
	DSN string `yaml:"dsn"`
	// Table is the Postgres table receiving samples.
	Table string `yaml:"table"`
	// RedisAddr is the Redis host:port.
	RedisAddr string `yaml:"redis_addr"`
	// RedisPassword is optional.
	RedisPassword string `yaml:"redis_password"`
	// RedisDB selects the Redis database.
	RedisDB int `yaml:"redis_db"`
	// StreamPrefix prefixes the Redis stream names; the measurement is appended.
	StreamPrefix string `yaml:"stream_prefix"`
	// Timeout bounds every sink write.
	Timeout time.Duration `yaml:"timeout"`
}

// PricingConfig holds actuator power ratings and the tariff.
type PricingConfig struct {
	// UnitCost is the price of one kilowatt-hour.
	UnitCost float64 `yaml:"unit_cost"`
	// ACWatts is the air conditioner power rating.
	ACWatts float64 `yaml:"ac_watts"`
	// HCWatts is the humidity controller power rating.
	HCWatts float64 `yaml:"hc_watts"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is console or json.
	Format string `yaml:"format"`
}

// Metrics drivers.
const (
	MetricsDriverLog      = "log"
	MetricsDriverPostgres = "postgres"
	MetricsDriverRedis    = "redis"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "room-control.yaml"

	// DefaultBandsFilename is the default comfort-band file.
	DefaultBandsFilename = "intervals.cfg"

	// DefaultStateFilename is the default filename for the alarm switch JSON.
	DefaultStateFilename = "room-control-alarm.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultRelayAttempts is the default number of tries per directive.
	DefaultRelayAttempts = 3

	// DefaultRelayBackoff is the default pause between relay attempts.
	DefaultRelayBackoff = 200 * time.Millisecond

	// DefaultRelayQueueSize is the default number of directives buffered for the relay.
	DefaultRelayQueueSize = 1024

	// DefaultLivenessWindow is the default silence before a room is disconnected.
	DefaultLivenessWindow = 15 * time.Second

	// DefaultSweepInterval is the default liveness sweep period.
	DefaultSweepInterval = time.Second

	// DefaultWorkers is the default number of ingestion shards.
	DefaultWorkers = 4

	// DefaultMetricsTable is the default Postgres table.
	DefaultMetricsTable = "room_metrics"

	// DefaultStreamPrefix is the default Redis stream prefix.
	DefaultStreamPrefix = "room-control"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errGroupIDRequired is returned when the group id is missing.
	errGroupIDRequired = errors.New("group id must be provided")
	// errBrokerRequired is returned when the broker URL is missing.
	errBrokerRequired = errors.New("broker url must be provided")
	// errRelayRequired is returned when the relay address is missing.
	errRelayRequired = errors.New("relay address must be provided")
	// errUnknownMetricsDriver is returned for unsupported sink drivers.
	errUnknownMetricsDriver = errors.New("unknown metrics driver")
	// errMetricsTarget is returned when a sink driver lacks its target.
	errMetricsTarget = errors.New("metrics target must be provided")
	// errInvalidTable is returned for table names that are not plain identifiers.
	errInvalidTable = errors.New("invalid metrics table name")
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

// Save writes Config to the provided path.
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

	// Restrict permissions, the file may carry broker and database credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills in defaults.
//
//nolint:cyclop,funlen // A flat list of defaults reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(settings.GroupID) == "" {
		return errGroupIDRequired
	}

	if settings.Broker.URL == "" {
		return errBrokerRequired
	}

	if _, err := url.Parse(settings.Broker.URL); err != nil {
		return fmt.Errorf("invalid broker url: %w", err)
	}

	if settings.Broker.ConnectTimeout <= 0 {
		settings.Broker.ConnectTimeout = DefaultTimeout
	}

	if settings.Relay.Address == "" {
		return errRelayRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.Relay.Address); err != nil {
		return fmt.Errorf("invalid relay address: %w", err)
	}

	if settings.Relay.Timeout <= 0 {
		settings.Relay.Timeout = DefaultTimeout
	}

	if settings.Relay.Attempts <= 0 {
		settings.Relay.Attempts = DefaultRelayAttempts
	}

	if settings.Relay.Backoff <= 0 {
		settings.Relay.Backoff = DefaultRelayBackoff
	}

	if settings.Relay.QueueSize <= 0 {
		settings.Relay.QueueSize = DefaultRelayQueueSize
	}

	if settings.Liveness.Window <= 0 {
		settings.Liveness.Window = DefaultLivenessWindow
	}

	if settings.Liveness.SweepInterval <= 0 {
		settings.Liveness.SweepInterval = DefaultSweepInterval
	}

	if settings.Alarm.StateFile == "" {
		settings.Alarm.StateFile = DefaultStateFilename
	}

	if settings.BandsFile == "" {
		settings.BandsFile = DefaultBandsFilename
	}

	if settings.Workers <= 0 {
		settings.Workers = DefaultWorkers
	}

	if settings.Pricing.UnitCost <= 0 {
		settings.Pricing.UnitCost = 0.15
	}

	if settings.Pricing.ACWatts <= 0 {
		settings.Pricing.ACWatts = 3000
	}

	if settings.Pricing.HCWatts <= 0 {
		settings.Pricing.HCWatts = 1000
	}

	return validateMetrics(&settings.Metrics)
}

// validateMetrics checks the sink selection and fills in its defaults.
func validateMetrics(m *MetricsConfig) error {
	m.Driver = strings.ToLower(strings.TrimSpace(m.Driver))
	if m.Driver == "" {
		m.Driver = MetricsDriverLog
	}

	if m.Timeout <= 0 {
		m.Timeout = DefaultTimeout
	}

	switch m.Driver {
	case MetricsDriverLog:
		return nil
	case MetricsDriverPostgres:
		if m.DSN == "" {
			return fmt.Errorf("%w: dsn for %s", errMetricsTarget, m.Driver)
		}

		if m.Table == "" {
			m.Table = DefaultMetricsTable
		}

		if !isIdentifier(m.Table) {
			return fmt.Errorf("%w: %q", errInvalidTable, m.Table)
		}

		return nil
	case MetricsDriverRedis:
		if m.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr for %s", errMetricsTarget, m.Driver)
		}

		if m.StreamPrefix == "" {
			m.StreamPrefix = DefaultStreamPrefix
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownMetricsDriver, m.Driver)
	}
}

// isIdentifier accepts lowercase SQL identifiers, optionally schema-qualified.
func isIdentifier(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}

		for i, r := range part {
			switch {
			case r == '_', r >= 'a' && r <= 'z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}

	return true
}
