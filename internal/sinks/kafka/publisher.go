// Package kafkasink streams planner reports to a Kafka topic.
package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/report"
)

type Config struct {
	DeviceID string
	Brokers  []string
	Topic    string
	// Buffer is the number of reports queued before new ones are dropped.
	Buffer       int
	WriteTimeout time.Duration
	WithHours    bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	cfg     Config
	w       messageWriter
	log     *zap.Logger
	queue   chan planner.Snapshot
	dropped atomic.Int64
}

func New(cfg Config, log *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newWithWriter(cfg, w, log), nil
}

func newWithWriter(cfg Config, w messageWriter, log *zap.Logger) *Publisher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 16
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		cfg:   cfg,
		w:     w,
		log:   log.With(zap.String("component", "kafka-sink"), zap.String("topic", cfg.Topic)),
		queue: make(chan planner.Snapshot, cfg.Buffer),
	}
}

// Observe queues a snapshot for publication. It never blocks the planner;
// when the queue is full the snapshot is dropped.
func (p *Publisher) Observe(s planner.Snapshot) {
	select {
	case p.queue <- s:
	default:
		n := p.dropped.Add(1)
		p.log.Warn("queue full, dropping report", zap.String("run_id", s.RunID), zap.Int64("dropped", n))
	}
}

// Dropped reports how many snapshots were discarded so far.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Run writes queued reports until ctx is canceled, then closes the writer.
func (p *Publisher) Run(ctx context.Context) error {
	defer func() {
		if err := p.w.Close(); err != nil {
			p.log.Warn("close writer", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-p.queue:
			if err := p.write(ctx, s); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.log.Error("publish report", zap.String("run_id", s.RunID), zap.Error(err))
			}
		}
	}
}

func (p *Publisher) write(ctx context.Context, s planner.Snapshot) error {
	b, err := json.Marshal(report.New(p.cfg.DeviceID, s, p.cfg.WithHours))
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout)
	defer cancel()

	return p.w.WriteMessages(wctx, kafka.Message{
		Key:   []byte(p.cfg.DeviceID),
		Value: b,
		Time:  s.ComputedAt,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(s.RunID)},
		},
	})
}
