package broker

import (
	"context"

	"roloApp/internal/modules/realtime/domain"
	"roloApp/internal/modules/realtime/infrastructure"
)

// StartKafkaConsumers launches one consumer goroutine per topic, dispatching
// decoded events through the handler registry. With no brokers configured the
// ingress is simply disabled.
func StartKafkaConsumers(
	ctx context.Context,
	registry *infrastructure.HandlerRegistry,
	brokers []string,
	groupID string,
	topics []string,
) {
	if len(brokers) == 0 {
		return
	}
	for _, topic := range topics {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			_ = consumer.Consume(ctx, func(topic string, evt *domain.Event) error {
				return registry.Dispatch(ctx, topic, evt)
			})
		}(topic)
	}
}
