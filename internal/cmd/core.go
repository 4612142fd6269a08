package cmd

import (
	"errors"
	"fmt"

	"github.com/ksteinfeldt/askbot/internal/access"
	"github.com/ksteinfeldt/askbot/internal/prefs"
	"github.com/ksteinfeldt/askbot/internal/state"
	"github.com/ksteinfeldt/askbot/internal/usage"
)

// core bundles the state file and the facades over it.
type core struct {
	store  *state.Store
	policy *access.Policy
	prefs  *prefs.Registry
	ledger *usage.Ledger
}

// openCore opens the configured state file, taking its lock.
func openCore() (*core, error) {
	path := state.Path(cfg.Store.DataDir)

	store, err := state.Open(path)
	if err != nil {
		if errors.Is(err, state.ErrStoreLocked) {
			return nil, fmt.Errorf("%s is in use, probably by a running bot; use the chat commands or stop it first: %w", path, err)
		}
		return nil, err
	}
	if ids := store.Reconciled(); len(ids) > 0 {
		logger.Warn().
			Ints64("users", ids).
			Str("state", path).
			Msg("users were both authorized and banned; the bans apply")
	}

	return &core{
		store:  store,
		policy: access.New(store, cfg.Bot.OwnerID),
		prefs:  prefs.New(store, cfg.Bot.DefaultModel),
		ledger: usage.New(store),
	}, nil
}

func (c *core) Close() error {
	return c.store.Close()
}
