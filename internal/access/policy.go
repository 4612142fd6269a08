// Package access decides who may use the bot and records allow/ban changes.
package access

import (
	"errors"
	"fmt"

	"github.com/ksteinfeldt/askbot/internal/state"
)

// ErrNotOwner indicates an administrative call from someone other than the owner.
var ErrNotOwner = errors.New("caller is not the bot owner")

// Policy answers authorization questions against the store and applies
// allow-list and ban-list changes. It holds no state of its own.
type Policy struct {
	store *state.Store
	owner int64
}

// New creates a Policy for the given owner id.
func New(store *state.Store, ownerID int64) *Policy {
	return &Policy{store: store, owner: ownerID}
}

// Owner returns the configured owner id.
func (p *Policy) Owner() int64 {
	return p.owner
}

// IsOwner reports whether id is the configured owner.
func (p *Policy) IsOwner(id int64) bool {
	return id == p.owner
}

// RequireOwner returns ErrNotOwner unless actor is the owner.
func (p *Policy) RequireOwner(actor int64) error {
	if !p.IsOwner(actor) {
		return fmt.Errorf("%w: %d", ErrNotOwner, actor)
	}
	return nil
}

// IsUserAuthorized reports whether a user may talk to the bot in private chats.
func (p *Policy) IsUserAuthorized(id int64) bool {
	return permits(p.store.Snapshot(), p.owner, id)
}

// permits is the private-chat rule. Any user who is not banned passes, so the
// allow-list only matters for broadcast targets. The owner always passes.
//
// TODO: confirm with the owner whether access should be allow-list gated;
// if so this is the only function that changes.
func permits(st *state.State, owner, id int64) bool {
	return id == owner ||
		st.AuthorizedUsers.Has(id) ||
		!st.BannedUsers.Has(id)
}

// IsGroupAuthorized reports whether a group chat is allow-listed.
// Groups are denied by default and the owner does not bypass this check.
func (p *Policy) IsGroupAuthorized(id int64) bool {
	return p.store.Snapshot().AuthorizedGroups.Has(id)
}

// AuthorizeUser adds id to the allow-list. Authorizing a banned user lifts
// the ban, so a user is never on both lists.
func (p *Policy) AuthorizeUser(id int64) error {
	return p.store.Update(func(st *state.State) error {
		added := st.AuthorizedUsers.Add(id)
		unbanned := st.BannedUsers.Remove(id)
		if !added && !unbanned {
			return state.SkipSave
		}
		return nil
	})
}

// RevokeUser removes id from the allow-list.
func (p *Policy) RevokeUser(id int64) error {
	return p.toggle(func(st *state.State) bool { return st.AuthorizedUsers.Remove(id) })
}

// AuthorizeGroup adds a group chat to the allow-list.
func (p *Policy) AuthorizeGroup(id int64) error {
	return p.toggle(func(st *state.State) bool { return st.AuthorizedGroups.Add(id) })
}

// RevokeGroup removes a group chat from the allow-list.
func (p *Policy) RevokeGroup(id int64) error {
	return p.toggle(func(st *state.State) bool { return st.AuthorizedGroups.Remove(id) })
}

// BanUser adds id to the ban-list and drops it from the allow-list,
// so the ban takes effect under the private-chat rule.
func (p *Policy) BanUser(id int64) error {
	return p.store.Update(func(st *state.State) error {
		banned := st.BannedUsers.Add(id)
		revoked := st.AuthorizedUsers.Remove(id)
		if !banned && !revoked {
			return state.SkipSave
		}
		return nil
	})
}

// UnbanUser removes id from the ban-list.
func (p *Policy) UnbanUser(id int64) error {
	return p.toggle(func(st *state.State) bool { return st.BannedUsers.Remove(id) })
}

// AuthorizedUsers returns the allow-listed user ids in ascending order.
func (p *Policy) AuthorizedUsers() []int64 {
	return p.store.Snapshot().AuthorizedUsers.Sorted()
}

// AuthorizedGroups returns the allow-listed group ids in ascending order.
func (p *Policy) AuthorizedGroups() []int64 {
	return p.store.Snapshot().AuthorizedGroups.Sorted()
}

// BannedUsers returns the banned user ids in ascending order.
func (p *Policy) BannedUsers() []int64 {
	return p.store.Snapshot().BannedUsers.Sorted()
}

// toggle applies a single membership change and saves only if it changed something.
func (p *Policy) toggle(change func(st *state.State) bool) error {
	return p.store.Update(func(st *state.State) error {
		if !change(st) {
			return state.SkipSave
		}
		return nil
	})
}
