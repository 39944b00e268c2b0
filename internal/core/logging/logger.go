// Package logging holds the zerolog helpers shared by every reviewdesk
// component.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with a "cmp" field.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ForSession returns l tagged with session_id. Used by loops that follow one
// session at a time and rebind on every switch.
func ForSession(l zerolog.Logger, id string) zerolog.Logger {
	return l.With().Str("session_id", id).Logger()
}
