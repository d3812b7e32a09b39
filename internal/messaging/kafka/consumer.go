package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// CartEventHandler получает события корзины.
type CartEventHandler func(ctx context.Context, event domain.CartEvent) error

// Watcher читает события корзины из Kafka (`unieats cart watch`).
// Если namespace задан, события чужих корзин пропускаются.
type Watcher struct {
	consumer  sarama.ConsumerGroup
	topics    []string
	namespace string
	handler   CartEventHandler
	logger    *log.Entry
	wg        sync.WaitGroup
}

// NewWatcher создаёт consumer group для topic событий корзины.
func NewWatcher(brokers []string, groupID, topic, namespace string, handler CartEventHandler, logger *log.Entry) (*Watcher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		topic = DefaultCartEventsTopic
	}
	if logger == nil {
		logger = log.WithField("component", "kafka-watcher")
	}

	config := sarama.NewConfig()
	config.ClientID = "unieats-client"
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &Watcher{
		consumer:  consumer,
		topics:    []string{topic},
		namespace: namespace,
		handler:   handler,
		logger:    logger,
	}, nil
}

// Start запускает чтение в фоне; остановка через отмену ctx и Stop.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Consume должен вызываться в цикле, так как при rebalance он завершается
			if err := w.consumer.Consume(ctx, w.topics, w); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				w.logger.WithError(err).Error("error from consumer")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for err := range w.consumer.Errors() {
			w.logger.WithError(err).Error("consumer error")
		}
	}()

	w.logger.WithField("topics", w.topics).Info("cart event watcher started")
}

// Stop закрывает consumer group и ждёт фоновые горутины.
func (w *Watcher) Stop() error {
	if err := w.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	w.wg.Wait()
	w.logger.Info("cart event watcher stopped")
	return nil
}

// Setup вызывается при старте consumer session
func (w *Watcher) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup вызывается при завершении consumer session
func (w *Watcher) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim обрабатывает сообщения из partition.
// Битые сообщения и события чужих корзин помечаются прочитанными, после ошибки обработчика сообщение остаётся непрочитанным.
func (w *Watcher) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			entry := w.logger.WithFields(log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			})

			event, err := ParseCartEvent(message)
			if err != nil {
				entry.WithError(err).Warn("skipping malformed cart event")
				session.MarkMessage(message, "")
				continue
			}
			if w.namespace != "" && event.Namespace != w.namespace {
				session.MarkMessage(message, "")
				continue
			}

			if err := w.handler(session.Context(), event); err != nil {
				entry.WithError(err).Error("cart event handler failed")
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
