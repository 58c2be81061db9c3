// Package service provides the publishers that hand domain events to the
// message broker. Publication is best effort: errors are logged and
// returned so callers can ignore them without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pronoelite/pronoelite-api/internal/metrics"
	"github.com/pronoelite/pronoelite-api/internal/queue"
)

// Publisher delivers one envelope to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Envelope) error
	Close() error
}

// AMQPPublisher publishes persistent messages to a durable RabbitMQ queue
// through the default exchange. It dials per publish, which keeps the
// server free of long-lived broker state at the cost of latency.
type AMQPPublisher struct {
	URL   string
	Queue string
}

func NewAMQPPublisher(url, queueName string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: queueName}
}

// dialTimeout bounds the connection handshake when ctx has no deadline.
const dialTimeout = 3 * time.Second

func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.Envelope) error {
	timeout := dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(timeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         string(ev.Type),
			Body:         body,
		})
}

func (p *AMQPPublisher) Close() error { return nil }

// KafkaPublisher writes envelopes to a topic keyed by event type.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

// NewKafkaPublisher builds a writer for topic on the comma separated
// brokers list.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev queue.Envelope) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Type),
		Value: body,
		Time:  time.Now(),
	})
}

func (p *KafkaPublisher) Close() error { return p.Writer.Close() }

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.Envelope) error { return nil }
func (NopPublisher) Close() error                                  { return nil }

// NewPublisher selects a backend by name: rabbitmq, kafka or none.
func NewPublisher(backend, rabbitURL, queueName, kafkaBrokers, kafkaTopic string) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "none":
		return NopPublisher{}, nil
	case "rabbitmq", "amqp":
		return NewAMQPPublisher(rabbitURL, queueName), nil
	case "kafka":
		return NewKafkaPublisher(kafkaBrokers, kafkaTopic), nil
	}
	return nil, fmt.Errorf("unsupported events backend %q", backend)
}

// Events emits domain events without ever failing the caller.
type Events struct {
	Pub     Publisher
	Log     *zap.Logger
	Timeout time.Duration
}

// NewEvents wraps pub. A nil publisher or logger is replaced by a no-op.
func NewEvents(pub Publisher, log *zap.Logger) *Events {
	if pub == nil {
		pub = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Events{Pub: pub, Log: log, Timeout: 3 * time.Second}
}

// Emit publishes payload as an event of type t. Failures are logged and
// counted, never returned and never retried.
func (e *Events) Emit(ctx context.Context, t queue.EventType, payload any) {
	env, err := queue.NewEnvelope(t, payload)
	if err != nil {
		e.Log.Error("event encode failed", zap.String("type", string(t)), zap.Error(err))
		metrics.EventsPublished.WithLabelValues(string(t), "error").Inc()
		return
	}
	// the request may already be finishing, keep the publish bounded on its own
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.Timeout)
	defer cancel()
	if err := e.Pub.Publish(pctx, env); err != nil {
		e.Log.Warn("event publish failed", zap.String("type", string(t)), zap.Error(err))
		metrics.EventsPublished.WithLabelValues(string(t), "error").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(string(t), "ok").Inc()
}
