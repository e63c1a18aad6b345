package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReceivesEvent(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(UpdatedEvent, "hello world")

	msg := ListenCmd(ctx, ch)()
	event, ok := msg.(Event[string])
	require.True(t, ok, "msg should be Event[string]")
	require.Equal(t, "hello world", event.Payload)
}

func TestListenCmd_ContextCancelled(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Nil(t, ListenCmd(ctx, ch)())
}

func TestListenCmd_ChannelClosed(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())
	broker.Close()

	require.Nil(t, ListenCmd(context.Background(), ch)())
}

func TestSnapshotListener_StartsFromLast(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	broker.Publish(UpdatedEvent, 7)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewSnapshotListener(ctx, broker)
	msg := l.Listen()()
	event, ok := msg.(Event[int])
	require.True(t, ok)
	require.Equal(t, 7, event.Payload)

	broker.Publish(UpdatedEvent, 8)
	event, ok = l.Listen()().(Event[int])
	require.True(t, ok)
	require.Equal(t, 8, event.Payload)
}
