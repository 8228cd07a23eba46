package notify

import (
	"context"
	"time"

	"camrent-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer batches notification messages through an inbox channel so HTTP
// handlers never wait on the broker. When the inbox is full the message is
// dropped, not queued: notifications are best-effort.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is cancelled, then drains what is
// already enqueued and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						close(p.closeCh)
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		logger.L().Warn("notification publish failed",
			zap.ByteString("key", m.Key),
			zap.Error(err),
		)
	}
}

// Publish enqueues without blocking; returns false when the inbox is full.
func (p *Producer) Publish(key, value []byte) bool {
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now()}:
		return true
	default:
		return false
	}
}

// WaitClosed blocks until the flush loop has finished.
func (p *Producer) WaitClosed() { <-p.closeCh }
