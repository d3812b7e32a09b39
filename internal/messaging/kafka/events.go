package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// DefaultCartEventsTopic: topic событий корзины по умолчанию.
const DefaultCartEventsTopic = "unieats.cart.events"

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderNamespace = "x-namespace"
)

// EncodeCartEvent собирает сообщение Kafka. Ключом служит namespace, чтобы события одной корзины шли по порядку.
func EncodeCartEvent(topic string, event domain.CartEvent) (*sarama.ProducerMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart event: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(event.Namespace),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(event.Type)},
			{Key: []byte(HeaderNamespace), Value: []byte(event.Namespace)},
		},
	}, nil
}

// ParseCartEvent парсит CartEvent из сообщения.
func ParseCartEvent(message *sarama.ConsumerMessage) (domain.CartEvent, error) {
	var event domain.CartEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return domain.CartEvent{}, fmt.Errorf("failed to unmarshal cart event: %w", err)
	}
	if event.Type == "" {
		return domain.CartEvent{}, fmt.Errorf("cart event without type at offset %d", message.Offset)
	}
	return event, nil
}
