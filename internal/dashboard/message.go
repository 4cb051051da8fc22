package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"totals-tracker/internal/domain/opportunities"
)

// MessageTypeOpportunities is the event name dashboard subscribers listen for.
const MessageTypeOpportunities = "opportunities-update"

// Message is the envelope pushed to subscribers.
type Message struct {
	Type      string                      `json:"type"`
	Payload   []opportunities.Opportunity `json:"payload"`
	Timestamp time.Time                   `json:"timestamp"`
}

// Broadcaster pushes the full opportunity snapshot to dashboard consumers.
type Broadcaster interface {
	Broadcast(ctx context.Context, snapshot []opportunities.Opportunity) error
}

func encodeSnapshot(snapshot []opportunities.Opportunity, at time.Time) ([]byte, error) {
	if snapshot == nil {
		snapshot = []opportunities.Opportunity{}
	}
	return json.Marshal(Message{
		Type:      MessageTypeOpportunities,
		Payload:   snapshot,
		Timestamp: at.UTC(),
	})
}

// Fanout broadcasts to every target and joins their errors.
type Fanout []Broadcaster

func (f Fanout) Broadcast(ctx context.Context, snapshot []opportunities.Opportunity) error {
	var errs []error
	for _, b := range f {
		if b == nil {
			continue
		}
		if err := b.Broadcast(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
