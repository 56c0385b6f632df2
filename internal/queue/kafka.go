package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	PollWait time.Duration
}

type PublisherConfig struct {
	Brokers []string
}

// KafkaConsumer is a group consumer with auto-commit disabled: a message's
// offset moves only when the caller commits it, so anything uncommitted is
// redelivered after a restart or rebalance.
type KafkaConsumer struct {
	client   *kgo.Client
	pollWait time.Duration
}

func NewKafkaConsumer(cfg ConsumerConfig) (*KafkaConsumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &KafkaConsumer{
		client:   client,
		pollWait: cfg.PollWait,
	}, nil
}

func (c *KafkaConsumer) Poll(ctx context.Context) ([]Message, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollWait)
	defer cancel()

	fetches := c.client.PollFetches(pollCtx)
	if fetches.IsClientClosed() {
		return nil, fmt.Errorf("kafka consumer is closed")
	}

	var fetchErr error
	fetches.EachError(func(topic string, partition int32, err error) {
		// an elapsed poll wait is not a failure, just an empty poll
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return
		}
		if fetchErr == nil {
			fetchErr = fmt.Errorf("fetch error on %s/%d: %w", topic, partition, err)
		}
	})
	if fetchErr != nil {
		return nil, fetchErr
	}

	var messages []Message
	fetches.EachRecord(func(record *kgo.Record) {
		messages = append(messages, Message{
			Topic:       record.Topic,
			Partition:   record.Partition,
			Offset:      record.Offset,
			LeaderEpoch: record.LeaderEpoch,
			Key:         record.Key,
			Value:       record.Value,
		})
	})

	return messages, nil
}

func (c *KafkaConsumer) Commit(ctx context.Context, messages ...Message) error {
	records := make([]*kgo.Record, 0, len(messages))
	for _, m := range messages {
		records = append(records, &kgo.Record{
			Topic:       m.Topic,
			Partition:   m.Partition,
			Offset:      m.Offset,
			LeaderEpoch: m.LeaderEpoch,
		})
	}

	if err := c.client.CommitRecords(ctx, records...); err != nil {
		return fmt.Errorf("failed to commit offsets: %w", err)
	}

	return nil
}

func (c *KafkaConsumer) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func (c *KafkaConsumer) Close() {
	c.client.Close()
}

// KafkaPublisher produces with the client's idempotent mode and full-ISR
// acks, so transport-level retries are not duplicated by the broker and
// success is only reported once every in-sync replica has the message.
type KafkaPublisher struct {
	client *kgo.Client
}

func NewKafkaPublisher(cfg PublisherConfig) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &KafkaPublisher{client: client}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	record := &kgo.Record{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
