package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs every publish at debug level, drops at warn and
// subscriber panics at error. Events about a known session carry its id.
// Access tokens are never logged.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		if id, ok := payloadSessionID(payload); ok {
			e = e.Int64("session_id", id)
		}
		e.Msg("event fired")
	})

	bus.OnDrop(func(event Event, payload any) {
		e := logger.Warn().Str("event", string(event))
		if id, ok := payloadSessionID(payload); ok {
			e = e.Int64("session_id", id)
		}
		e.Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func payloadSessionID(payload any) (int64, bool) {
	switch p := payload.(type) {
	case SessionCreatedPayload:
		return p.Created.SessionID, true
	case SessionDeletedPayload:
		return p.SessionID, true
	case SessionExtendedPayload:
		return p.SessionID, true
	case SessionFinishedPayload:
		return p.SessionID, true
	case CommentAddedPayload:
		if !p.Ref.IsToken() {
			return p.Ref.ID, true
		}
	}
	return 0, false
}
