package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
)

type recordingWriter struct {
	messages []kafkago.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublish_WritesEnvelopeKeyedByOrder(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewPublisher(writer)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(),
		orderdomain.PaymentCaptured{BaseEvent: orderdomain.BaseEvent{Timestamp: at}, OrderID: 42, BuyerID: 7, Reference: "ref", Amount: decimal.NewFromInt(200)},
		orderdomain.ListingSold{BaseEvent: orderdomain.BaseEvent{Timestamp: at}, ListingID: 3, OrderID: 42},
	)
	require.NoError(t, err)
	require.Len(t, writer.messages, 2)

	msg := writer.messages[0]
	require.Equal(t, "42", string(msg.Key))
	require.Equal(t, "orders.payment.captured", headerCarrier{headers: &msg.Headers}.Get("event-name"))

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	require.Equal(t, "orders.payment.captured", envelope.Name)
	require.True(t, at.Equal(envelope.OccurredAt))

	var payload struct {
		OrderID int64
		Amount  decimal.Decimal
	}
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	require.Equal(t, int64(42), payload.OrderID)
	require.True(t, decimal.NewFromInt(200).Equal(payload.Amount))
}

func TestPublish_NoEventsIsNoop(t *testing.T) {
	writer := &recordingWriter{}
	require.NoError(t, NewPublisher(writer).Publish(context.Background()))
	require.Empty(t, writer.messages)
}
