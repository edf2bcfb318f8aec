package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event is the payload handed to the notification sink after an enrollment
// changes state.
type Event struct {
	EnrollmentID string
	RosterID     string
	Status       string
	Timestamp    time.Time
}

// Notifier delivers enrollment events to an external sink. Delivery is
// fire-and-forget with at-most-once semantics: a failed delivery is logged by
// the implementation, never surfaced to the admission path.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}

type logNotifier struct {
	log *zap.Logger
}

// NewLogNotifier returns a Notifier that writes events to the application
// log. It stands in for a real delivery channel in deployments without one.
func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Publish(ctx context.Context, event Event) {
	n.log.Info("enrollment notification",
		zap.String("enrollment_id", event.EnrollmentID),
		zap.String("roster_id", event.RosterID),
		zap.String("status", event.Status),
		zap.Time("timestamp", event.Timestamp),
	)
}
