package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps every published event.
type Envelope[T any] struct {
	EventName    string    `json:"eventName"`
	EventVersion int       `json:"eventVersion"`
	EventID      string    `json:"eventId"`
	Producer     string    `json:"producer"`
	PartitionKey string    `json:"partitionKey"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      T         `json:"payload"`
}

func newEnvelope[T any](name string, version int, key string, at time.Time, payload T) Envelope[T] {
	return Envelope[T]{
		EventName:    name,
		EventVersion: version,
		EventID:      uuid.NewString(),
		Producer:     Producer,
		PartitionKey: key,
		OccurredAt:   at,
		Payload:      payload,
	}
}

// Validate checks the envelope identity against what a consumer expects.
func (e Envelope[T]) Validate(name string, version int) error {
	if e.EventName != name {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != version {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	return nil
}
