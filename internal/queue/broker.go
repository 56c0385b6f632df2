package queue

import (
	"context"
)

// Message is one inbound record together with the consumer's position for it.
// LeaderEpoch travels with the offset so a commit carries the same metadata
// the fetch returned.
type Message struct {
	Topic       string
	Partition   int32
	Offset      int64
	LeaderEpoch int32
	Key         []byte
	Value       []byte
}

// Consumer pulls inbound messages from the broker. Poll blocks until at least
// one message is available or the poll wait elapses; an empty slice with a
// nil error means the wait elapsed. Offsets advance only through Commit.
type Consumer interface {
	Poll(ctx context.Context) ([]Message, error)
	Commit(ctx context.Context, messages ...Message) error
	Ping(ctx context.Context) error
	Close()
}

// Publisher sends outbound messages. Publish reports the broker's answer
// synchronously: a nil error means the message was fully acknowledged.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Ping(ctx context.Context) error
	Close()
}
