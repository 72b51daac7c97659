package session

import (
	"sync"
	"time"
)

// Denylist is an in-memory set of revoked token IDs.
// Entries are kept only until the token would have expired anyway.
// Revocations do not survive a restart and are not shared between processes.
type Denylist struct {
	mu        sync.Mutex
	revoked   map[string]time.Time // jti -> token expiry
	lastPrune time.Time
}

// pruneInterval bounds how often Contains sweeps expired entries.
const pruneInterval = time.Minute

// NewDenylist creates an empty denylist.
func NewDenylist() *Denylist {
	return &Denylist{
		revoked: make(map[string]time.Time),
	}
}

// Add revokes id until expiresAt.
// PRE: id is non-empty
func (d *Denylist) Add(id string, expiresAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = expiresAt
}

// Contains reports whether id is revoked at now.
// Expired entries are swept at most once per pruneInterval.
func (d *Denylist) Contains(id string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if now.Sub(d.lastPrune) >= pruneInterval {
		for k, exp := range d.revoked {
			if !now.Before(exp) {
				delete(d.revoked, k)
			}
		}
		d.lastPrune = now
	}
	exp, ok := d.revoked[id]
	return ok && now.Before(exp)
}

// Len returns the number of live revocations.
func (d *Denylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.revoked)
}
