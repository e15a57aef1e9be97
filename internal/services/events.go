package services

import (
	"context"
	"log/slog"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/utils"
)

// publishEvent never fails the caller. Broker latency is absorbed by the AsyncPublisher the
// service manager installs; a full queue drops the event with a warning.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(utils.DetachedContext(ctx), events.NewEvent(eventType, data)); err != nil {
		logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
