package eventbus

import (
	"fmt"

	"github.com/hay-kot/reviewdesk/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeSessionCreated(func(p SessionCreatedPayload) {
		r.notifyf(notify.LevelInfo, "session %d created", p.Created.SessionID)
	})

	r.bus.SubscribeSessionExtended(func(p SessionExtendedPayload) {
		r.notifyf(notify.LevelInfo, "session %d extended", p.SessionID)
	})

	r.bus.SubscribeSessionFinished(func(p SessionFinishedPayload) {
		r.notifyf(notify.LevelInfo, "session %d finished", p.SessionID)
	})

	r.bus.SubscribeSessionDeleted(func(p SessionDeletedPayload) {
		r.notifyf(notify.LevelInfo, "session %d deleted", p.SessionID)
	})

	r.bus.SubscribeSessionReady(func(p SessionReadyPayload) {
		if p.AlreadyReady {
			r.notifyf(notify.LevelInfo, "session was already marked ready")
			return
		}
		r.notifyf(notify.LevelInfo, "marked ready")
	})

	r.bus.SubscribeCommentAdded(func(p CommentAddedPayload) {
		r.notifyf(notify.LevelInfo, "comment added on %s:%s", p.Comment.File, p.Comment.Lines)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
