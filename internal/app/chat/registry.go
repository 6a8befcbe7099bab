/*
Package chat contains the core logic for the chat service.

This file defines the Registry struct, the shared username namespace. It maps
each claimed display name to its Session and enforces that at most one
session holds a given name at any instant.
*/
package chat

import (
	"sort"
	"sync"

	"tinyirc/internal/pkg/errs"
)

// Registry is a concurrent-safe mapping from display name to Session.
// Names are case-sensitive.
type Registry struct {
	// mu protects concurrent access to the sessions map.
	mu sync.RWMutex

	// sessions maps a claimed display name to the session holding it.
	sessions map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Claim atomically checks that name is unclaimed and inserts the session.
// The existence check and the insert share one critical section, so two
// concurrent claims of the same name can never both succeed. Returns
// ErrNameInUse when the name is already held.
func (r *Registry) Claim(name string, s *Session) *errs.CustomError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[name]; taken {
		return errs.NewError(errs.ErrNameInUse)
	}

	r.sessions[name] = s
	return nil
}

// Release removes the name from the registry, but only while it still points
// at the given session. A name is released exactly once, by the session that
// claimed it, so a slow cleanup can never evict a successor that reclaimed
// the freed name.
func (r *Registry) Release(name string, s *Session) {
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[name]; ok && current == s {
		delete(r.sessions, name)
	}
}

// Get returns the session holding name, or nil.
func (r *Registry) Get(name string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[name]
}

// Snapshot returns the current sessions as a copied slice. The router and
// the liveness monitor iterate snapshots so that no lock is ever held across
// a network write, and a session removing itself cannot deadlock against a
// full scan.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Names returns the claimed names in sorted order, for stable admin listings.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of claimed names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
