package notifier

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeeva/beautybook/internal/config"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/messaging"
	"github.com/avdeeva/beautybook/pkg/metrics"
)

type fakeBroker struct {
	published []publishedMsg
	err       error
}

type publishedMsg struct {
	channel string
	message interface{}
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMsg{channel: channel, message: message})
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func newTestService(broker *fakeBroker) *Service {
	l := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewWith("test", prometheus.NewRegistry())
	return NewService(broker, config.NotifierConfig{Channel: "notifications"}, 1, m, l)
}

func TestNotifyClient_PublishesEnvelope(t *testing.T) {
	broker := &fakeBroker{}
	svc := newTestService(broker)

	svc.NotifyClient(context.Background(), 100, "reminder", "скоро запись")

	require.Len(t, broker.published, 1)
	assert.Equal(t, "notifications", broker.published[0].channel)

	msg, ok := broker.published[0].message.(*messaging.Message)
	require.True(t, ok)
	assert.Equal(t, "reminder", msg.Type)

	env, ok := msg.Payload.(Envelope)
	require.True(t, ok)
	assert.Equal(t, "client", env.Recipient)
	assert.Equal(t, int64(100), env.ClientID)
	assert.Equal(t, "скоро запись", env.Text)
}

func TestNotifyAdmin_AddressedToConfiguredAdmin(t *testing.T) {
	broker := &fakeBroker{}
	svc := newTestService(broker)

	svc.NotifyAdmin(context.Background(), "booking_request", "новая заявка")

	require.Len(t, broker.published, 1)
	env := broker.published[0].message.(*messaging.Message).Payload.(Envelope)
	assert.Equal(t, "admin", env.Recipient)
	assert.Equal(t, int64(1), env.ClientID)
}

func TestNotify_BrokerFailureSwallowed(t *testing.T) {
	broker := &fakeBroker{err: errors.New("redis down")}
	svc := newTestService(broker)

	// Does not panic and does not surface the error.
	svc.NotifyClient(context.Background(), 100, "reminder", "скоро запись")
	assert.Empty(t, broker.published)
}
