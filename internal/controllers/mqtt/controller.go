package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/coolsim/internal/ports"
	"github.com/Agrid-Dev/coolsim/internal/report"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

type Config struct {
	// Identity
	DeviceID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainReport    bool
	PublishInterval time.Duration
	WithHours       bool

	Username string
	Password string
}

type Controller struct {
	svc ports.PlannerService
	cfg Config
	log *zap.Logger

	client mqtt.Client
}

func New(svc ports.PlannerService, cfg Config, log *zap.Logger) (*Controller, error) {
	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}
	if cfg.DeviceID == "" {
		return nil, errors.New("mqtt: DeviceID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "coolsim/" + cfg.DeviceID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "coolsim-" + cfg.DeviceID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: log.With(zap.String("component", "mqtt")),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topic := c.topic("set/+")
		token := cl.Subscribe(topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Error("subscribe", zap.String("topic", topic), zap.Error(err))
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	// a new run ID means the scenario was recomputed
	last := c.publishReport()

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			if c.svc.Get().RunID != last {
				last = c.publishReport()
			}
		}
	}
}

// publishReport returns the run ID it published.
func (c *Controller) publishReport() string {
	s := c.svc.Get()
	b, err := json.Marshal(report.New(c.cfg.DeviceID, s, c.cfg.WithHours))
	if err != nil {
		c.log.Error("encode report", zap.Error(err))
		return s.RunID
	}
	c.client.Publish(c.topic("report"), c.cfg.QoS, c.cfg.RetainReport, b)
	return s.RunID
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field>
	t := msg.Topic()
	prefix := strings.TrimRight(c.cfg.BaseTopic, "/") + "/set/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	field := strings.TrimPrefix(t, prefix)

	if err := c.dispatch(field, msg.Payload()); err != nil {
		c.log.Warn("command ignored", zap.String("field", field), zap.Error(err))
	}
}

func (c *Controller) dispatch(field string, payload []byte) error {
	switch field {
	case "surface":
		return applyValue(payload, c.svc.SetSurface)

	case "height":
		return applyValue(payload, c.svc.SetHeight)

	case "temperature_setpoint":
		return applyValue(payload, c.svc.SetSetpoint)

	case "insulation":
		return applyValue(payload, func(s string) error {
			i, err := thermal.ParseInsulation(s)
			if err != nil {
				return err
			}
			return c.svc.SetInsulation(i)
		})

	case "unit_type":
		return applyValue(payload, func(s string) error {
			u, err := thermal.ParseUnitType(s)
			if err != nil {
				return err
			}
			return c.svc.SetUnitType(u)
		})

	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func applyValue[T any](b []byte, apply func(T) error) error {
	v, err := decodeValueStrict[T](b)
	if err != nil {
		return err
	}
	return apply(v)
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
