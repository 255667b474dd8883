package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"roloApp/internal/modules/realtime/domain"
)

// KafkaConsumer reads externally produced mutation events for one topic.
type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
	}
}

func (c *KafkaConsumer) Consume(ctx context.Context, handler func(topic string, evt *domain.Event) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			continue
		}
		evt := decodeEvent(m)
		slog.Info("kafka event consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", evt.Entity),
			slog.String("action", evt.Action),
			slog.String("resourceId", evt.ResourceID),
		)
		if err := handler(m.Topic, evt); err != nil {
			slog.Warn("kafka handler error", slog.String("topic", m.Topic), slog.Any("error", err))
		}
	}
}

type rawEvent struct {
	Entity     string          `json:"entity"`
	Action     string          `json:"action"`
	ResourceID string          `json:"resourceId"`
	Data       json.RawMessage `json:"data"`
}

func decodeEvent(m kafka.Message) *domain.Event {
	var raw rawEvent
	if err := json.Unmarshal(m.Value, &raw); err != nil {
		slog.Warn("kafka event decode failed", slog.String("topic", m.Topic), slog.Any("error", err))
		return &domain.Event{Timestamp: time.Now().UTC()}
	}
	entity := strings.TrimSpace(strings.ToLower(raw.Entity))
	action := strings.TrimSpace(strings.ToLower(raw.Action))
	return &domain.Event{
		Event:      domain.EventName(action, entity),
		Room:       domain.RoomFor(entity),
		Entity:     entity,
		Action:     action,
		ResourceID: strings.TrimSpace(raw.ResourceID),
		Data:       raw.Data,
		Timestamp:  time.Now().UTC(),
	}
}
