// Package usage accumulates per-user request and token counters.
package usage

import (
	"errors"
	"sort"

	"github.com/ksteinfeldt/askbot/internal/state"
)

// ErrNegativeTokens indicates a token count below zero, which would break
// the counters' monotonicity.
var ErrNegativeTokens = errors.New("token count is negative")

// Ledger records completion usage into the store.
type Ledger struct {
	store *state.Store
}

// New creates a Ledger over store.
func New(store *state.Store) *Ledger {
	return &Ledger{store: store}
}

// Record counts one request of tokens tokens against userID and model.
func (l *Ledger) Record(userID int64, model string, tokens int) error {
	if tokens < 0 {
		return ErrNegativeTokens
	}

	return l.store.Update(func(st *state.State) error {
		u, ok := st.Usage[userID]
		if !ok {
			u = state.Usage{ByModel: map[string]state.ModelUsage{}}
		}

		u.TotalRequests++
		u.TotalTokens += int64(tokens)

		mu := u.ByModel[model]
		mu.Requests++
		mu.Tokens += int64(tokens)
		u.ByModel[model] = mu

		st.Usage[userID] = u
		return nil
	})
}

// Get returns a copy of the user's counters.
func (l *Ledger) Get(userID int64) (state.Usage, bool) {
	u, ok := l.store.Snapshot().Usage[userID]
	if !ok {
		return state.Usage{}, false
	}
	return u.Clone(), true
}

// ModelLine is one row of a usage summary.
type ModelLine struct {
	Model    string
	Requests int64
	Tokens   int64
}

// Summary is a user's usage with models in display order.
type Summary struct {
	TotalRequests int64
	TotalTokens   int64
	Models        []ModelLine
}

// Summary returns the user's usage with models sorted by tokens, busiest
// first, ties broken by name.
func (l *Ledger) Summary(userID int64) (Summary, bool) {
	u, ok := l.Get(userID)
	if !ok {
		return Summary{}, false
	}

	s := Summary{
		TotalRequests: u.TotalRequests,
		TotalTokens:   u.TotalTokens,
		Models:        make([]ModelLine, 0, len(u.ByModel)),
	}
	for model, mu := range u.ByModel {
		s.Models = append(s.Models, ModelLine{Model: model, Requests: mu.Requests, Tokens: mu.Tokens})
	}
	sort.Slice(s.Models, func(i, j int) bool {
		if s.Models[i].Tokens != s.Models[j].Tokens {
			return s.Models[i].Tokens > s.Models[j].Tokens
		}
		return s.Models[i].Model < s.Models[j].Model
	})

	return s, true
}
