// Package prefs stores which completion model each user selected.
package prefs

import (
	"errors"

	"github.com/ksteinfeldt/askbot/internal/state"
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gpt-4o-mini"

// ErrEmptyModel indicates an attempt to store a blank model id.
var ErrEmptyModel = errors.New("model id is empty")

// Registry reads and writes per-user model preferences.
// Model ids are not checked against any catalog.
type Registry struct {
	store        *state.Store
	defaultModel string
}

// New creates a Registry. An empty defaultModel falls back to DefaultModel.
func New(store *state.Store, defaultModel string) *Registry {
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Registry{store: store, defaultModel: defaultModel}
}

// Default returns the model used for users without a preference.
func (r *Registry) Default() string {
	return r.defaultModel
}

// Model returns the user's selected model, or the default.
func (r *Registry) Model(userID int64) string {
	if p, ok := r.store.Snapshot().Preferences[userID]; ok && p.Model != "" {
		return p.Model
	}
	return r.defaultModel
}

// SetModel overwrites the user's selected model.
func (r *Registry) SetModel(userID int64, model string) error {
	if model == "" {
		return ErrEmptyModel
	}

	return r.store.Update(func(st *state.State) error {
		p := st.Preferences[userID]
		p.Model = model
		st.Preferences[userID] = p
		return nil
	})
}
