package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
)

const DefaultTopic = "marketplace.lifecycle"

var _ ports.EventPublisher = (*Publisher)(nil)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes lifecycle events to a Kafka topic keyed by order id so
// events for one order stay on one partition.
type Publisher struct {
	writer MessageWriter
}

// NewWriter builds a Kafka writer for the lifecycle topic.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, events ...orderdomain.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	for _, event := range events {
		msg, err := encode(ctx, event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Envelope is the JSON value written for each event.
type Envelope struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func encode(ctx context.Context, event orderdomain.Event) (kafkago.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	value, err := json.Marshal(Envelope{Name: event.EventName(), OccurredAt: event.OccurredAt(), Payload: payload})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encode envelope %s: %w", event.EventName(), err)
	}
	msg := kafkago.Message{
		Key:     []byte(strconv.FormatInt(orderKey(event), 10)),
		Value:   value,
		Headers: []kafkago.Header{{Key: "event-name", Value: []byte(event.EventName())}},
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &msg.Headers})
	return msg, nil
}

func orderKey(event orderdomain.Event) int64 {
	switch e := event.(type) {
	case orderdomain.OrderPlaced:
		return e.OrderID
	case orderdomain.OrderConfirmed:
		return e.OrderID
	case orderdomain.OrderCancelled:
		return e.OrderID
	case orderdomain.PaymentCaptured:
		return e.OrderID
	case orderdomain.PaymentDeclined:
		return e.OrderID
	case orderdomain.ListingSold:
		return e.OrderID
	default:
		return 0
	}
}

type headerCarrier struct {
	headers *[]kafkago.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafkago.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

var _ propagation.TextMapCarrier = headerCarrier{}
