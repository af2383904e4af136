// Package rabbitmq ingests raw query records pushed by log shippers.
package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	errwrap "github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"github.com/rahmatrdn/go-query-insight/internal/metrics"
	"github.com/rahmatrdn/go-query-insight/internal/repository/sqlite"
	"go.uber.org/zap"
)

// ErrMalformed marks a message that can never be processed and must not be
// requeued.
var ErrMalformed = errwrap.New("malformed message")

type Options struct {
	URL      string
	Queue    string
	Prefetch int
}

type Consumer struct {
	opts      Options
	repo      sqlite.RecordRepository
	validator *helper.Validator
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time

	conn *amqp.Connection
	ch   *amqp.Channel
	done chan struct{}
}

func NewConsumer(opts Options, repo sqlite.RecordRepository, validator *helper.Validator, m *metrics.Metrics, log *zap.Logger) *Consumer {
	return &Consumer{
		opts:      opts,
		repo:      repo,
		validator: validator,
		metrics:   m,
		log:       log,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Start connects, declares the durable queue and consumes until ctx is done
// or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	funcName := "Consumer.Start"

	conn, err := amqp.Dial(c.opts.URL)
	if err != nil {
		return errwrap.Wrap(err, funcName)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errwrap.Wrap(err, funcName)
	}
	if err := ch.Qos(c.opts.Prefetch, 0, false); err != nil {
		_ = conn.Close()
		return errwrap.Wrap(err, funcName)
	}
	q, err := ch.QueueDeclare(c.opts.Queue, true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return errwrap.Wrap(err, funcName)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "query-insight", false, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return errwrap.Wrap(err, funcName)
	}

	c.conn = conn
	c.ch = ch

	go func() {
		defer close(c.done)
		for d := range deliveries {
			c.process(ctx, d)
		}
		c.log.Info("rabbitmq consumer stopped", zap.String("queue", q.Name))
	}()

	c.log.Info("rabbitmq consumer started", zap.String("queue", q.Name))
	return nil
}

// Close stops consuming and waits for the in-flight delivery.
func (c *Consumer) Close() error {
	if c.conn == nil {
		return nil
	}
	_ = c.ch.Close()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.Handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errwrap.Is(err, ErrMalformed):
		c.log.Warn("rejecting malformed message", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
		_ = d.Reject(false)
	default:
		c.log.Error("failed to store records, requeueing", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
		_ = d.Nack(false, true)
	}
}

// Handle decodes one message body holding a record or an array of records and
// stores the valid ones.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	records, err := decode(body)
	if err != nil {
		return err
	}

	now := c.now()
	valid := make([]entity.RawQueryRecord, 0, len(records))
	for _, r := range records {
		if msgs := c.validator.Struct(r); len(msgs) > 0 {
			c.metrics.RecordsRejected.WithLabelValues("push").Inc()
			c.log.Warn("dropping invalid pushed record", zap.String("record_id", r.ID), zap.Strings("problems", msgs))
			continue
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = now
		}
		r.Timestamp = r.Timestamp.UTC()
		valid = append(valid, r)
	}

	return c.repo.CreateBatch(ctx, valid)
}

func decode(body []byte) ([]entity.RawQueryRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errwrap.Wrap(ErrMalformed, "empty body")
	}

	if body[0] == '[' {
		var records []entity.RawQueryRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, errwrap.Wrap(ErrMalformed, err.Error())
		}
		return records, nil
	}

	var record entity.RawQueryRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, errwrap.Wrap(ErrMalformed, err.Error())
	}
	return []entity.RawQueryRecord{record}, nil
}
