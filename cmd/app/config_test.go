package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

func TestEnvKeyTransform_TopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DEVICE_ID", "device_id"},
		{"CONTROLLER", "controller"},
		{"ADDR", "addr"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvKeyTransform_Controllers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CONTROLLERS_HTTP_ADDR", "controllers.http.addr"},
		{"CONTROLLERS_MQTT_PUBLISH_INTERVAL", "controllers.mqtt.publish_interval"},
		{"CONTROLLERS_MODBUS_UNIT_ID", "controllers.modbus.unit_id"},
		{"CONTROLLERS_HTTP", "controllers_http"},   // not enough parts -> fallback
		{"CONTROLLERS__ADDR", "controllers..addr"}, // edge case
		{"controllers_HTTP_addr", "controllers.http.addr"},
		{"SINKS_KAFKA_BROKERS", "sinks.kafka.brokers"},
		{"SINKS_KAFKA_WRITE_TIMEOUT", "sinks.kafka.write_timeout"},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvKeyTransform_Sections(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SCENARIO_TEMPERATURE_SETPOINT", "scenario.temperature_setpoint"},
		{"SCENARIO_UNIT_TYPE", "scenario.unit_type"},
		{"PROFILE_MAX_TEMPERATURE", "profile.max_temperature"},
		{"LOGGING_LEVEL", "logging.level"},
		{"COMMENTARY_API_KEY", "commentary.api_key"},
		{"SCENARIO", "scenario"}, // not enough parts -> passthrough
		{"LOGGING", "logging"},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func noEnv() []string { return nil }

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("", noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeviceID != "default" {
		t.Fatalf("expected device_id=default, got %q", cfg.DeviceID)
	}
	if !cfg.Controllers.HTTP.Enabled || cfg.Controllers.HTTP.Addr != ":8080" {
		t.Fatalf("expected http enabled on :8080, got %+v", cfg.Controllers.HTTP)
	}
	sc, err := cfg.BuildScenario()
	if err != nil {
		t.Fatal(err)
	}
	if sc != simulator.DefaultScenario() {
		t.Fatalf("expected default scenario, got %+v", sc)
	}
	prof, err := cfg.BuildProfile()
	if err != nil {
		t.Fatal(err)
	}
	if len(prof) != 24 || prof[6] != 20.0 || prof[14] != 35.0 {
		t.Fatalf("unexpected default profile %v", prof)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scenario.Surface != 20 {
		t.Fatalf("expected default surface, got %v", cfg.Scenario.Surface)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `device_id: room7
scenario:
  surface: 45
  insulation: good
  unit_type: high_efficiency
profile:
  min_temperature: 18
  max_temperature: 38
controllers:
  mqtt:
    enabled: true
    publish_interval: 5s
sinks:
  kafka:
    brokers: ["k1:9092", "k2:9092"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeviceID != "room7" {
		t.Fatalf("device_id: got %q", cfg.DeviceID)
	}
	if cfg.Controllers.HTTP.Enabled {
		t.Fatal("expected http to stay disabled when mqtt is enabled")
	}
	if cfg.Controllers.MQTT.PublishInterval != 5*time.Second {
		t.Fatalf("publish_interval: got %v", cfg.Controllers.MQTT.PublishInterval)
	}
	if len(cfg.Sinks.Kafka.Brokers) != 2 || cfg.Sinks.Kafka.Topic != "coolsim.reports" {
		t.Fatalf("kafka: got %+v", cfg.Sinks.Kafka)
	}

	sc, err := cfg.BuildScenario()
	if err != nil {
		t.Fatal(err)
	}
	if sc.Surface != 45 || sc.Height != 2.5 || sc.Insulation != thermal.InsulationGood || sc.Unit != thermal.UnitHighEfficiency {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	prof, _ := cfg.BuildProfile()
	if prof[6] != 18 || prof[14] != 38 {
		t.Fatalf("unexpected profile %v", prof)
	}
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"scenario": {"temperature_setpoint": 26}, "profile": {"hourly": [30, 31, 32]}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scenario.Setpoint != 26 {
		t.Fatalf("setpoint: got %v", cfg.Scenario.Setpoint)
	}
	prof, err := cfg.BuildProfile()
	if err != nil {
		t.Fatal(err)
	}
	if len(prof) != 3 || prof[2] != 32 {
		t.Fatalf("hourly profile: got %v", prof)
	}
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, noEnv); err == nil {
		t.Fatal("expected error for .toml")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	environ := func() []string {
		return []string{
			"COOLSIM_DEVICE_ID=room9",
			"COOLSIM_SCENARIO_TEMPERATURE_SETPOINT=22.5",
			"COOLSIM_SCENARIO_UNIT_TYPE=older",
			"COOLSIM_CONTROLLERS_HTTP_ADDR=:9090",
			"COOLSIM_CONTROLLERS_MODBUS_UNIT_ID=7",
			"COOLSIM_SINKS_KAFKA_BROKERS=a:9092, b:9092",
			"COOLSIM_LOGGING_LEVEL=debug",
			"UNRELATED=1",
		}
	}

	cfg, err := loadConfig("", environ)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeviceID != "room9" {
		t.Fatalf("device_id: got %q", cfg.DeviceID)
	}
	if cfg.Scenario.Setpoint != 22.5 || cfg.Scenario.UnitType != "older" {
		t.Fatalf("scenario: got %+v", cfg.Scenario)
	}
	if cfg.Controllers.HTTP.Addr != ":9090" || cfg.Controllers.MODBUS.UnitID != 7 {
		t.Fatalf("controllers: got %+v", cfg.Controllers)
	}
	if len(cfg.Sinks.Kafka.Brokers) != 2 || cfg.Sinks.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("brokers: got %v", cfg.Sinks.Kafka.Brokers)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level: got %q", cfg.Logging.Level)
	}
}

func TestConfigScenario_Invalid(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scenario.Insulation = "superb"
	if _, err := cfg.BuildScenario(); !errors.Is(err, thermal.ErrInvalidInsulation) {
		t.Fatalf("expected ErrInvalidInsulation, got %v", err)
	}

	cfg = defaultConfig()
	cfg.Scenario.Surface = 1
	if _, err := cfg.BuildScenario(); !errors.Is(err, simulator.ErrSurfaceOutOfRange) {
		t.Fatalf("expected ErrSurfaceOutOfRange, got %v", err)
	}
}

func TestConfigProfile_Invalid(t *testing.T) {
	cfg := defaultConfig()
	cfg.Profile.MinTemperature = 40
	if _, err := cfg.BuildProfile(); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}
