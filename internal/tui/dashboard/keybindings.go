package dashboard

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/hay-kot/reviewdesk/pkg/tmpl"
)

// ActionType identifies the kind of action a keybinding triggers.
type ActionType int

const (
	ActionTypeNone ActionType = iota
	ActionTypeExtend
	ActionTypeFinish
	ActionTypeDelete
	ActionTypeEvaluate
	ActionTypeReport
	ActionTypePDF
	ActionTypeOpenPR
	ActionTypeRefresh
	ActionTypeNew
	ActionTypeShell
)

var actionTypes = map[string]ActionType{
	config.ActionExtend:   ActionTypeExtend,
	config.ActionFinish:   ActionTypeFinish,
	config.ActionDelete:   ActionTypeDelete,
	config.ActionEvaluate: ActionTypeEvaluate,
	config.ActionReport:   ActionTypeReport,
	config.ActionPDF:      ActionTypePDF,
	config.ActionOpenPR:   ActionTypeOpenPR,
	config.ActionRefresh:  ActionTypeRefresh,
	config.ActionNew:      ActionTypeNew,
}

// needsActive lists the actions that only make sense while the candidate
// can still work.
var needsActive = map[ActionType]bool{
	ActionTypeExtend: true,
	ActionTypeFinish: true,
}

// sessionless lists the actions that work without a selected session.
var sessionless = map[ActionType]bool{
	ActionTypeRefresh: true,
	ActionTypeNew:     true,
}

// Action represents a resolved keybinding action ready for execution.
type Action struct {
	Type      ActionType
	Key       string
	Help      string
	Confirm   string // Non-empty if confirmation required
	ShellCmd  string // For shell actions, the rendered command
	SessionID int64
	Err       error // Non-nil if action resolution failed (e.g., template error)
}

// NeedsConfirm returns true if the action requires user confirmation.
func (a Action) NeedsConfirm() bool {
	return a.Confirm != ""
}

// KeybindingHandler resolves dashboard keys to actions.
type KeybindingHandler struct {
	keybindings map[string]config.Keybinding
	baseURL     string
	exec        executil.Executor
}

// NewKeybindingHandler creates a handler for the merged keybindings.
func NewKeybindingHandler(keybindings map[string]config.Keybinding, baseURL string, exec executil.Executor) *KeybindingHandler {
	return &KeybindingHandler{
		keybindings: keybindings,
		baseURL:     baseURL,
		exec:        exec,
	}
}

// Resolve turns a key press into an action for sess, which is nil when no
// session is highlighted. Extend and finish are only offered while the
// session is active.
func (h *KeybindingHandler) Resolve(k string, sess *review.Session, now time.Time) (Action, bool) {
	kb, exists := h.keybindings[k]
	if !exists {
		return Action{}, false
	}

	action := Action{
		Key:     k,
		Help:    kb.Help,
		Confirm: kb.Confirm,
	}

	if kb.Action != "" {
		typ, ok := actionTypes[kb.Action]
		if !ok {
			log.Warn().Str("key", k).Str("action", kb.Action).Msg("keybinding references unknown action")
			return Action{}, false
		}
		action.Type = typ
		if action.Help == "" {
			action.Help = kb.Action
		}
	} else if kb.Sh != "" {
		action.Type = ActionTypeShell
	} else {
		return Action{}, false
	}

	if sess == nil {
		return action, sessionless[action.Type]
	}
	action.SessionID = sess.ID

	if needsActive[action.Type] && sess.EffectiveStatus(now) != review.StatusActive {
		return Action{}, false
	}
	if sess.EffectiveStatus(now) == review.StatusDeleted && !sessionless[action.Type] {
		return Action{}, false
	}

	if action.Type == ActionTypeShell {
		rendered, err := tmpl.Render(kb.Sh, config.KeybindingTemplateData{
			ID:            sess.ID,
			Token:         sess.AccessToken,
			CandidateName: sess.CandidateName,
			Status:        string(sess.EffectiveStatus(now)),
			PRURL:         sess.Gitea.URL(),
			BaseURL:       h.baseURL,
		})
		if err != nil {
			action.Err = fmt.Errorf("template error in keybinding %q: %w", k, err)
			log.Warn().Str("key", k).Err(err).Msg("template rendering failed")
			return action, true
		}
		action.ShellCmd = rendered
	}

	return action, true
}

// ExecuteShell runs a rendered shell action and returns its trimmed output.
func (h *KeybindingHandler) ExecuteShell(ctx context.Context, action Action) (string, error) {
	if action.Err != nil {
		return "", action.Err
	}
	out, err := h.exec.Run(ctx, "sh", "-c", action.ShellCmd)
	msg := strings.TrimSpace(string(out))
	if err != nil {
		if msg != "" {
			return "", fmt.Errorf("command failed: %s", msg)
		}
		return "", fmt.Errorf("command failed: %w", err)
	}
	return msg, nil
}

// KeyBindings returns key.Binding objects for integration with bubbles help system.
func (h *KeybindingHandler) KeyBindings() []key.Binding {
	keys := slices.Sorted(maps.Keys(h.keybindings))
	bindings := make([]key.Binding, 0, len(keys))

	for _, k := range keys {
		kb := h.keybindings[k]
		help := kb.Help
		if help == "" {
			help = kb.Action
		}
		if help == "" {
			help = "unknown"
		}

		bindings = append(bindings, key.NewBinding(
			key.WithKeys(k),
			key.WithHelp(k, help),
		))
	}

	return bindings
}
