package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler gets the raw record; for hero.slide.changed the key is the showroom
// and the value a messages.SlideChanged. A handler error stops Consume without
// committing, so handlers skip records they can never apply.
type Handler func(ctx context.Context, key, value []byte) error

// Consumer feeds the campus-api hero projection. Every record carries the full
// carousel state, so a fresh group starts from the newest offset instead of
// replaying history.
type Consumer struct {
	r messageReader
}

// NewConsumer joins groupID when it is set, letting campus-api replicas split
// showroom partitions; otherwise it reads the single topic partition directly.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		StartOffset:       kafka.LastOffset,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
	}
	return newConsumerWithReader(kafka.NewReader(cfg))
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{r: r}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume commits each record after handler accepts it and returns on the first
// fetch, handler or commit error. The error names topic, partition and offset.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			// без commit: после рестарта группа перечитает это состояние слайдера
			return errors.Wrapf(err, "handle %s[%d]@%d", msg.Topic, msg.Partition, msg.Offset)
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}
