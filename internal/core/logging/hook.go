package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies session_id and view from the event context onto the
// log line, so interleaved output from several windows stays attributable.
type ContextHook struct{}

func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := GetSessionID(ctx); id != "" {
		e.Str("session_id", id)
	}

	if v := GetView(ctx); v != "" {
		e.Str("view", v)
	}
}
