// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within one reviewdesk process.
package eventbus

import (
	"github.com/hay-kot/reviewdesk/internal/core/notify"
	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// Event names a kind of event.
type Event string

// Keep list sorted A-Z.
const (
	EventCommentAdded          Event = "comment.added"
	EventNotificationPublished Event = "notification.published"
	EventSessionCreated        Event = "session.created"
	EventSessionDeleted        Event = "session.deleted"
	EventSessionExtended       Event = "session.extended"
	EventSessionFinished       Event = "session.finished"
	EventSessionReady          Event = "session.ready"
)

type CommentAddedPayload struct {
	Ref     review.Ref
	Comment review.Comment
}

type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

type SessionCreatedPayload struct {
	Created review.Created
}

type SessionDeletedPayload struct {
	SessionID int64
}

// SessionExtendedPayload is the in-process extend acknowledgment. ExpiresAt
// is the raw value already written to the expiry cache.
type SessionExtendedPayload struct {
	SessionID int64
	ExpiresAt string
}

type SessionFinishedPayload struct {
	SessionID  int64
	FinishedAt string
}

type SessionReadyPayload struct {
	Token        string
	AlreadyReady bool
}
