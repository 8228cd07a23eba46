package notify

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCompleted = "OrderCompleted"

	producerName = "camrent-api"
)

// Envelope wraps every outgoing notification event. CorrelationID is the
// order's external id, which doubles as the partition key so events for one
// order stay ordered.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}
