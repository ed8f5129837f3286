package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/devhours/backend/services/payment-service/models"
)

// SettlementEventProducer publishes settlement outcomes to Kafka, keyed by
// subscription id so outcomes for one subscription stay ordered.
type SettlementEventProducer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewSettlementEventProducer(brokers []string, topic string, logger *zap.Logger) *SettlementEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Settlement event producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &SettlementEventProducer{writer: w, topic: topic, logger: logger}
}

func (p *SettlementEventProducer) SendSettlementEvent(event models.SettlementEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SubscriptionID),
		Value: data,
	}

	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Error("Failed to publish settlement event",
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("Settlement event published",
		zap.String("type", event.Type),
		zap.String("transaction_id", event.TransactionID),
	)
	return nil
}

func (p *SettlementEventProducer) Close() {
	_ = p.writer.Close()
	p.logger.Info("Settlement event producer closed")
}
