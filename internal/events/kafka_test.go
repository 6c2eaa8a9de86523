package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/internal/models"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "order_events")

	o := &models.Order{ID: 17, UserID: 3, Status: models.StatusPending, TotalAmount: decimal.RequireFromString("12.50")}
	require.NoError(t, p.Publish(context.Background(), NewOrderEvent(OrderPlaced, o)))

	require.Len(t, w.msgs, 1)
	require.Equal(t, "17", string(w.msgs[0].Key))
	require.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	require.Equal(t, string(OrderPlaced), string(w.msgs[0].Headers[0].Value))

	var got OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.Equal(t, uint(17), got.OrderID)
	require.Equal(t, models.StatusPending, got.Status)
	require.True(t, decimal.RequireFromString("12.5").Equal(got.TotalAmount))
}

func TestProducerWrapsWriteError(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("no brokers")}, "order_events")
	err := p.Publish(context.Background(), OrderEvent{OrderID: 1})
	require.ErrorContains(t, err, "no brokers")
}

type countingPublisher struct {
	n   int
	err error
}

func (c *countingPublisher) Publish(context.Context, OrderEvent) error {
	c.n++
	return c.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	a := &countingPublisher{err: errors.New("down")}
	b := &countingPublisher{}
	err := Fanout{a, nil, b}.Publish(context.Background(), OrderEvent{})
	require.Error(t, err)
	require.Equal(t, 1, a.n)
	require.Equal(t, 1, b.n)
}
