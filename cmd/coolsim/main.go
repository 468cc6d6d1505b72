package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Agrid-Dev/coolsim/cmd/app"
	"github.com/Agrid-Dev/coolsim/internal/commentary"
	httpctrl "github.com/Agrid-Dev/coolsim/internal/controllers/http"
	modbusctrl "github.com/Agrid-Dev/coolsim/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/coolsim/internal/controllers/mqtt"
	wsctrl "github.com/Agrid-Dev/coolsim/internal/controllers/ws"
	"github.com/Agrid-Dev/coolsim/internal/logging"
	"github.com/Agrid-Dev/coolsim/internal/metrics"
	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/report"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	kafkasink "github.com/Agrid-Dev/coolsim/internal/sinks/kafka"
)

func main() {
	var (
		configPath string
		once       bool
		format     string
		hours      bool
		logLevel   string
	)
	flag.StringVarP(&configPath, "config", "c", "config.yaml", "path to config file (.yaml/.yml/.json)")
	flag.BoolVar(&once, "once", false, "print one comparison and exit")
	flag.StringVar(&format, "format", "yaml", "output format for --once: yaml or json")
	flag.BoolVar(&hours, "hours", false, "include hourly rows in --once output")
	flag.StringVar(&logLevel, "log-level", "", "override logging.level")
	flag.Parse()

	if err := run(configPath, once, format, hours, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "coolsim:", err)
		os.Exit(1)
	}
}

func run(configPath string, once bool, format string, hours bool, logLevel string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sc, err := cfg.BuildScenario()
	if err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	profile, err := cfg.BuildProfile()
	if err != nil {
		return err
	}

	p, err := planner.New(sc, simulator.New(profile), log)
	if err != nil {
		return err
	}

	var comments *commentary.Client
	if cfg.Commentary.Enabled {
		comments, err = newCommentary(cfg.Commentary, log)
		if err != nil {
			return err
		}
	}

	if once {
		return printOnce(os.Stdout, format, cfg.DeviceID, p.Get(), hours, comments)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, cfg, p, comments, log)
}

func newCommentary(c app.CommentaryConfig, log *zap.Logger) (*commentary.Client, error) {
	key := c.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	return commentary.New(commentary.Config{
		APIKey:  key,
		BaseURL: c.BaseURL,
		Model:   c.Model,
		Timeout: c.Timeout,
	}, log)
}

type onceOutput struct {
	report.Report `yaml:",inline"`
	Commentary    string `json:"commentary,omitempty" yaml:"commentary,omitempty"`
}

func printOnce(w io.Writer, format, deviceID string, s planner.Snapshot, hours bool, comments *commentary.Client) error {
	out := onceOutput{Report: report.New(deviceID, s, hours)}
	if comments != nil {
		out.Commentary = comments.Comment(context.Background(), out.Summary)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func serve(ctx context.Context, cfg app.Config, p *planner.Planner, comments *commentary.Client, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Controllers.HTTP.Enabled {
		opts := []httpctrl.Option{httpctrl.WithLogger(log)}
		if cfg.Controllers.HTTP.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			rec := metrics.New(reg)
			rec.Observe(p.Get())
			p.Subscribe(rec.Observe)
			opts = append(opts, httpctrl.WithMetrics(reg))
		}
		if cfg.Controllers.HTTP.WebSocket {
			ws := wsctrl.NewHandler(wsctrl.NewHub(log), p, cfg.DeviceID, log)
			p.Subscribe(ws.Observe)
			opts = append(opts, httpctrl.WithWebSocket(ws))
		}
		if comments != nil {
			opts = append(opts, httpctrl.WithCommentary(comments))
		}

		srv := httpctrl.New(p, cfg.Controllers.HTTP.Addr, cfg.DeviceID, opts...)
		log.Info("http listening", zap.String("addr", cfg.Controllers.HTTP.Addr))
		g.Go(func() error { return srv.Run(ctx) })
	}

	if cfg.Controllers.MQTT.Enabled {
		m := cfg.Controllers.MQTT
		ctrl, err := mqttctrl.New(p, mqttctrl.Config{
			DeviceID:        cfg.DeviceID,
			BrokerURL:       m.BrokerURL,
			ClientID:        m.ClientID,
			BaseTopic:       m.BaseTopic,
			QoS:             m.QoS,
			RetainReport:    m.RetainReport,
			PublishInterval: m.PublishInterval,
			WithHours:       m.WithHours,
			Username:        m.Username,
			Password:        m.Password,
		}, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return ctrl.Run(ctx) })
	}

	if cfg.Controllers.MODBUS.Enabled {
		ctrl, err := modbusctrl.New(p, modbusctrl.Config{
			DeviceID: cfg.DeviceID,
			Addr:     cfg.Controllers.MODBUS.Addr,
			UnitID:   cfg.Controllers.MODBUS.UnitID,
		}, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return ctrl.Run(ctx) })
	}

	if cfg.Sinks.Kafka.Enabled {
		k := cfg.Sinks.Kafka
		pub, err := kafkasink.New(kafkasink.Config{
			DeviceID:     cfg.DeviceID,
			Brokers:      k.Brokers,
			Topic:        k.Topic,
			Buffer:       k.Buffer,
			WriteTimeout: k.WriteTimeout,
			WithHours:    k.WithHours,
		}, log)
		if err != nil {
			return err
		}
		pub.Observe(p.Get())
		p.Subscribe(pub.Observe)
		g.Go(func() error { return pub.Run(ctx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}
