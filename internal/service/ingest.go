package service

import (
	"context"
	"encoding/json"
	"fmt"
)

// IngestAlert validates a raw event document and fans it out to all live
// stream subscribers. Only events whose event_type discriminator is
// "alert" are accepted; everything else is rejected before any side
// effect. The event is otherwise treated as an opaque bag of fields.
func (s *Service) IngestAlert(ctx context.Context, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var event map[string]interface{}
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAlert, err)
	}

	eventType, _ := event["event_type"].(string)
	if eventType != "alert" {
		return ErrNotAlert
	}

	// Re-marshal so the stream always carries compact single-line JSON,
	// whatever whitespace the sender used.
	compact, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	s.broadcaster.Publish(compact)
	return nil
}
