package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/messaging"
)

type stubClient struct {
	messages []messaging.Message
}

func (s *stubClient) Publish(context.Context, messaging.Message) error { return nil }

func (s *stubClient) Consume(ctx context.Context, handler messaging.Handler) error {
	for _, msg := range s.messages {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubClient) Topic() string { return "procure.orders" }

func TestDispatchFansOutPerTopic(t *testing.T) {
	var calls int32
	count := func(context.Context, messaging.Message) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}
	failing := func(context.Context, messaging.Message) error { return errors.New("boom") }

	engine := NewEngine(Params{
		Client: &stubClient{},
		Logger: zap.NewNop(),
		Registrations: []HandlerRegistration{
			{Topic: "procure.orders", Handler: count},
			{Topic: "procure.orders", Handler: failing},
			{Topic: "procure.orders", Handler: count},
			{Topic: "", Handler: count},
		},
	})

	err := engine.dispatch(context.Background(), 0, messaging.Message{Topic: "procure.orders"})
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	require.NoError(t, engine.dispatch(context.Background(), 0, messaging.Message{Topic: "other"}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEngineConsumesUntilStopped(t *testing.T) {
	handled := make(chan messaging.Message, 1)
	var cfg config.Config
	cfg.Messaging.Enabled = true
	cfg.Messaging.Workers.Enabled = true
	cfg.Messaging.Workers.Concurrency = 1

	engine := NewEngine(Params{
		Client: &stubClient{messages: []messaging.Message{{Topic: "procure.orders", Value: []byte("{}")}}},
		Logger: zap.NewNop(),
		Config: cfg,
		Registrations: []HandlerRegistration{{
			Topic: "procure.orders",
			Handler: func(_ context.Context, msg messaging.Message) error {
				handled <- msg
				return nil
			},
		}},
	})

	require.NoError(t, engine.start(context.Background()))
	select {
	case msg := <-handled:
		assert.Equal(t, "procure.orders", msg.Topic)
	case <-time.After(time.Second):
		t.Fatal("message was not handled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, engine.stop(ctx))
}

func TestEngineDisabled(t *testing.T) {
	engine := NewEngine(Params{Client: &stubClient{}, Logger: zap.NewNop()})

	require.NoError(t, engine.start(context.Background()))
	require.NoError(t, engine.stop(context.Background()))
}
