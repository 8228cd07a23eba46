package notify

import (
	"context"
	"encoding/json"
	"time"

	"camrent-be/internal/logger"
	"camrent-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KafkaNotifier enqueues completion events on the order events topic.
// Implements order.Notifier.
type KafkaNotifier struct {
	producer *Producer
}

func NewKafkaNotifier(producer *Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) OrderCompleted(ctx context.Context, notice order.CompletedNotification) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", notice.OrderID),
		zap.String("event_type", EventOrderCompleted),
	)

	payload, err := json.Marshal(notice)
	if err != nil {
		log.Error("failed to marshal notification payload", zap.Error(err))
		return
	}

	env := Envelope{
		EventID:       uuid.New().String(),
		EventType:     EventOrderCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: notice.ExternalID,
		Payload:       payload,
	}

	value, err := json.Marshal(env)
	if err != nil {
		log.Error("failed to marshal event envelope", zap.Error(err))
		return
	}

	if !n.producer.Publish([]byte(notice.ExternalID), value) {
		log.Warn("notification inbox full, event dropped")
		return
	}

	log.Info("completion notification enqueued", zap.String("email", notice.UserEmail))
}

// LogNotifier is the fallback when no brokers are configured: the notice is
// only written to the log. Implements order.Notifier.
type LogNotifier struct{}

func (LogNotifier) OrderCompleted(ctx context.Context, notice order.CompletedNotification) {
	logger.FromCtx(ctx).Info("order completed notification (log only)",
		zap.Uint("order_id", notice.OrderID),
		zap.String("email", notice.UserEmail),
		zap.Float64("total", notice.Total),
	)
}
