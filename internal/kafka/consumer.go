package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeSearchEvents reads search events from the topic and hands each one to
// the handler. Messages that do not decode are logged and skipped; a handler
// error stops consumption.
func (c *Consumer) ConsumeSearchEvents(ctx context.Context, handler func(context.Context, SearchEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeSearchEvent(msg.Value)
		if err != nil {
			log.Printf("WARNING: skipping message at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeSearchEvent(data []byte) (SearchEvent, error) {
	var event SearchEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return SearchEvent{}, fmt.Errorf("failed to decode search event: %w", err)
	}
	if event.ID == "" {
		return SearchEvent{}, fmt.Errorf("search event has no id")
	}
	return event, nil
}
