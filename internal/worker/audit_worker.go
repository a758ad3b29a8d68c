package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/researcher-directory/internal/events"
)

// StartAuditWorker subscribes a structured-log sink to every audit event type.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	sink := func(_ context.Context, event events.Event) error {
		logger.Info("audit",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventLogout,
		events.EventUserCreated,
		events.EventUserUpdated,
		events.EventUserDeleted,
		events.EventProfileUpdated,
		events.EventRateLimitExceeded,
	} {
		dispatcher.Subscribe(eventType, sink)
	}
}
