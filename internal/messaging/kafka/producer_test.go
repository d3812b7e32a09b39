package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

func testCartEvent() domain.CartEvent {
	return domain.CartEvent{
		Type:       domain.CartEventItemAdded,
		Namespace:  "alice",
		FoodID:     42,
		Quantity:   2,
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProducer_PublishCartEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, DefaultCartEventsTopic, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != DefaultCartEventsTopic {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "alice" {
			return errors.New("message must be keyed by namespace")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event domain.CartEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.FoodID != 42 || event.Type != domain.CartEventItemAdded {
			return errors.New("unexpected payload")
		}
		return nil
	})

	if err := producer.PublishCartEvent(context.Background(), testCartEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishCartEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, DefaultCartEventsTopic, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishCartEvent(context.Background(), testCartEvent())
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected out of brokers error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishCartEvent_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, DefaultCartEventsTopic, log.WithField("component", "kafka-producer-test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.PublishCartEvent(ctx, testCartEvent()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}

	// ожиданий не было: Close не должен жаловаться
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(nil, "", nil); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestEncodeParseCartEvent(t *testing.T) {
	msg, err := EncodeCartEvent("topic", testCartEvent())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var eventType string
	for _, h := range msg.Headers {
		if string(h.Key) == HeaderEventType {
			eventType = string(h.Value)
		}
	}
	if eventType != string(domain.CartEventItemAdded) {
		t.Fatalf("expected event type header, got %q", eventType)
	}

	value, _ := msg.Value.Encode()
	event, err := ParseCartEvent(&sarama.ConsumerMessage{Value: value})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Namespace != "alice" || event.Quantity != 2 {
		t.Fatalf("unexpected event: %+v", event)
	}

	if _, err := ParseCartEvent(&sarama.ConsumerMessage{Value: []byte("{")}); err == nil {
		t.Fatal("expected error for malformed json")
	}
	if _, err := ParseCartEvent(&sarama.ConsumerMessage{Value: []byte(`{"namespace":"x"}`)}); err == nil {
		t.Fatal("expected error for event without type")
	}
}
