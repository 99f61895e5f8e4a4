// Package uistate keeps per-user presentation state (theme, open modals)
// that clients restore on startup.
package uistate

import (
	"context"
	"fmt"
	"log"
	"maps"
	"strings"
	"time"

	"engagement/internal/model"
)

// Themes
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// MaxModals bounds the number of modal flags stored per user.
const MaxModals = 32

// ErrInvalidTheme is returned for a theme outside the known set.
var ErrInvalidTheme = model.NewError(model.KindValidation, "invalid theme")

// ErrTooManyModals is returned when a patch would exceed MaxModals.
var ErrTooManyModals = model.NewError(model.KindValidation, "too many modal flags")

// State is one user's UI state.
type State struct {
	Theme     string          `json:"theme"`
	Modals    map[string]bool `json:"modals"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// DefaultState is what a user without saved state starts from.
func DefaultState() State {
	return State{Theme: ThemeSystem, Modals: map[string]bool{}}
}

// Patch is a partial update. Nil fields are left unchanged; a modal set to
// false is removed.
type Patch struct {
	Theme  *string         `json:"theme"`
	Modals map[string]bool `json:"modals"`
}

func (s State) clone() State {
	out := s
	out.Modals = maps.Clone(s.Modals)
	if out.Modals == nil {
		out.Modals = map[string]bool{}
	}
	return out
}

// apply returns the patched state and whether anything changed.
func (s State) apply(p Patch) (State, bool, error) {
	next := s.clone()
	changed := false

	if p.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*p.Theme))
		switch theme {
		case ThemeLight, ThemeDark, ThemeSystem:
		default:
			return s, false, ErrInvalidTheme
		}
		if theme != next.Theme {
			next.Theme = theme
			changed = true
		}
	}

	for name, open := range p.Modals {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if open && !next.Modals[name] {
			next.Modals[name] = true
			changed = true
		} else if !open && next.Modals[name] {
			delete(next.Modals, name)
			changed = true
		}
	}
	if len(next.Modals) > MaxModals {
		return s, false, ErrTooManyModals
	}
	return next, changed, nil
}

// ErrStateConflict is returned when concurrent writers kept a patch from
// committing after several attempts.
var ErrStateConflict = model.NewError(model.KindConflict, "ui state changed concurrently, retry")

// ModifyFunc derives the next state from the stored one. found is false
// when nothing is stored yet. The state is written only when changed is
// true.
type ModifyFunc func(current State, found bool) (next State, changed bool, err error)

// Persister stores State per user. Modify must not lose a write that
// lands between its read and its save; it either retries fn on fresh state
// or fails with ErrStateConflict.
type Persister interface {
	Load(ctx context.Context, userID string) (state State, found bool, err error)
	Modify(ctx context.Context, userID string, fn ModifyFunc) (State, error)
}

// Container reads and writes through the persister on every call and
// keeps nothing in process, so replicas sharing a persister see each
// other's changes immediately.
type Container struct {
	persister Persister
	now       func() time.Time
}

func NewContainer(persister Persister) *Container {
	return &Container{
		persister: persister,
		now:       time.Now,
	}
}

// Get returns the user's stored state, or the default.
func (c *Container) Get(ctx context.Context, userID string) (State, error) {
	state, found, err := c.persister.Load(ctx, userID)
	if err != nil {
		log.Printf("[UIState] Load FAILED: user=%s err=%v", userID, err)
		return State{}, fmt.Errorf("load ui state: %w", err)
	}
	if !found {
		return DefaultState(), nil
	}
	return state.clone(), nil
}

// Update applies p to the stored state and persists the result when it
// differs.
func (c *Container) Update(ctx context.Context, userID string, p Patch) (State, error) {
	var applyErr error
	saved := false

	state, err := c.persister.Modify(ctx, userID, func(current State, found bool) (State, bool, error) {
		if !found {
			current = DefaultState()
		}
		next, changed, err := current.apply(p)
		if err != nil {
			applyErr = err
			return State{}, false, err
		}
		if !changed {
			saved = false
			return current.clone(), false, nil
		}
		next.UpdatedAt = c.now().UTC()
		saved = true
		return next, true, nil
	})
	if applyErr != nil {
		return State{}, applyErr
	}
	if err != nil {
		log.Printf("[UIState] Save FAILED: user=%s err=%v", userID, err)
		return State{}, fmt.Errorf("save ui state: %w", err)
	}

	if saved {
		log.Printf("[UIState] Save OK: user=%s theme=%s modals=%d", userID, state.Theme, len(state.Modals))
	}
	return state.clone(), nil
}
