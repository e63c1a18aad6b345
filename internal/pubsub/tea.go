package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for one event on ch and hands it to Update as a message.
// A cancelled ctx or a closed ch yields a nil message, which ends the chain.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case event, ok := <-ch:
			if ok {
				return event
			}
		case <-ctx.Done():
		}
		return nil
	}
}

// ContinuousListener owns one subscription for the life of a program.
// Update must call Listen again after every event it receives.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener delivers events published from now on.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{ctx, broker.Subscribe(ctx)}
}

// NewSnapshotListener also replays the most recent event, so a view
// opened after the last change still gets current state.
func NewSnapshotListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{ctx, broker.SubscribeWithLast(ctx)}
}

func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
