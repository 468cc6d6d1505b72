package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Agrid-Dev/coolsim/internal/report"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

const EnvPrefix = "COOLSIM_"

var ErrInvalidProfile = errors.New("profile: min_temperature must not exceed max_temperature")

type Config struct {
	DeviceID    string            `koanf:"device_id"`
	Logging     LoggingConfig     `koanf:"logging"`
	Scenario    ScenarioConfig    `koanf:"scenario"`
	Profile     ProfileConfig     `koanf:"profile"`
	Controllers ControllersConfig `koanf:"controllers"`
	Sinks       SinksConfig       `koanf:"sinks"`
	Commentary  CommentaryConfig  `koanf:"commentary"`
}

type LoggingConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

type ScenarioConfig struct {
	Surface    float64 `koanf:"surface"`
	Height     float64 `koanf:"height"`
	Insulation string  `koanf:"insulation"` // "poor" | "medium" | "good"
	Setpoint   float64 `koanf:"temperature_setpoint"`
	UnitType   string  `koanf:"unit_type"` // "standard" | "older" | "high_efficiency"
}

// ProfileConfig describes the exterior day. Hourly, when set, replaces the
// synthetic min/max profile.
type ProfileConfig struct {
	MinTemperature float64   `koanf:"min_temperature"`
	MaxTemperature float64   `koanf:"max_temperature"`
	Hourly         []float64 `koanf:"hourly"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt"`
	MODBUS ModbusConfig `koanf:"modbus"`
}

type HTTPConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Addr      string `koanf:"addr"`
	Metrics   bool   `koanf:"metrics"`
	WebSocket bool   `koanf:"websocket"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BrokerURL       string        `koanf:"broker_url"`
	ClientID        string        `koanf:"client_id"`
	BaseTopic       string        `koanf:"base_topic"`
	QoS             byte          `koanf:"qos"`
	RetainReport    bool          `koanf:"retain_report"`
	PublishInterval time.Duration `koanf:"publish_interval"`
	WithHours       bool          `koanf:"with_hours"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

type SinksConfig struct {
	Kafka KafkaConfig `koanf:"kafka"`
}

type KafkaConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Brokers      []string      `koanf:"brokers"`
	Topic        string        `koanf:"topic"`
	Buffer       int           `koanf:"buffer"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	WithHours    bool          `koanf:"with_hours"`
}

type CommentaryConfig struct {
	Enabled bool          `koanf:"enabled"`
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

func defaultConfig() Config {
	def := simulator.DefaultScenario()
	return Config{
		DeviceID: "default",
		Logging:  LoggingConfig{Level: "info"},
		Scenario: ScenarioConfig{
			Surface:    def.Surface,
			Height:     def.Height,
			Insulation: def.Insulation.String(),
			Setpoint:   def.Setpoint,
			UnitType:   def.Unit.String(),
		},
		Profile: ProfileConfig{
			MinTemperature: thermal.DefaultMinTemperature,
			MaxTemperature: thermal.DefaultMaxTemperature,
		},
		Controllers: ControllersConfig{
			HTTP: HTTPConfig{Addr: ":8080", Metrics: true, WebSocket: true},
			MQTT: MQTTConfig{
				BrokerURL:       "tcp://localhost:1883",
				PublishInterval: time.Second,
			},
			MODBUS: ModbusConfig{Addr: "127.0.0.1:1502", UnitID: 1},
		},
		Sinks: SinksConfig{Kafka: KafkaConfig{
			Topic:        "coolsim.reports",
			Buffer:       16,
			WriteTimeout: 10 * time.Second,
		}},
		Commentary: CommentaryConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-3.5-turbo",
			Timeout: 30 * time.Second,
		},
	}
}

// LoadConfig layers defaults, the optional file at path and COOLSIM_*
// environment variables, in that order.
func LoadConfig(path string) (Config, error) {
	return loadConfig(path, os.Environ)
}

func loadConfig(path string, environ func() []string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envTransform,
		EnvironFunc:   environ,
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse %s: %w", ext, err)
	}
	return nil
}

func envTransform(k, v string) (string, any) {
	key := envKeyTransform(strings.TrimPrefix(k, EnvPrefix))
	if key == "sinks.kafka.brokers" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		return key, brokers
	}
	return key, v
}

// envKeyTransform maps an unprefixed variable name to a koanf path:
// CONTROLLERS_HTTP_ADDR → controllers.http.addr, SCENARIO_UNIT_TYPE →
// scenario.unit_type. Unknown names are only lowercased.
func envKeyTransform(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	switch section {
	case "controllers", "sinks":
		parts := strings.SplitN(s, "_", 3)
		if len(parts) < 3 {
			return s
		}
		return strings.Join(parts, ".")
	case "scenario", "profile", "logging", "commentary":
		return section + "." + rest
	default:
		return s
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DeviceID == "" {
		cfg.DeviceID = "default"
	}
	if cfg.Controllers.HTTP.Addr == "" {
		cfg.Controllers.HTTP.Addr = ":8080"
	}
	if !cfg.Controllers.HTTP.Enabled && !cfg.Controllers.MQTT.Enabled && !cfg.Controllers.MODBUS.Enabled {
		cfg.Controllers.HTTP.Enabled = true
	}
	if cfg.Controllers.MQTT.PublishInterval == 0 {
		cfg.Controllers.MQTT.PublishInterval = 1 * time.Second
	}
	if cfg.Controllers.MODBUS.UnitID == 0 {
		cfg.Controllers.MODBUS.UnitID = 1
	}
}

// BuildScenario parses and validates the configured room.
func (c Config) BuildScenario() (simulator.Scenario, error) {
	sc, err := report.Scenario{
		Surface:    c.Scenario.Surface,
		Height:     c.Scenario.Height,
		Insulation: c.Scenario.Insulation,
		Setpoint:   c.Scenario.Setpoint,
		UnitType:   c.Scenario.UnitType,
	}.ToScenario()
	if err != nil {
		return simulator.Scenario{}, err
	}
	if err := sc.Validate(); err != nil {
		return simulator.Scenario{}, err
	}
	return sc, nil
}

// BuildProfile returns the hourly exterior temperatures to simulate.
func (c Config) BuildProfile() ([]float64, error) {
	if len(c.Profile.Hourly) > 0 {
		return append([]float64(nil), c.Profile.Hourly...), nil
	}
	if c.Profile.MinTemperature > c.Profile.MaxTemperature {
		return nil, ErrInvalidProfile
	}
	return thermal.ExteriorProfile(1, c.Profile.MinTemperature, c.Profile.MaxTemperature), nil
}
