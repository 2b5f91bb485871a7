package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry tracks every live authenticated connection, keyed by user.
// It is process-local state, not a source of truth: nothing outside the
// process lifetime depends on it, and it is rebuilt empty on restart.
//
// The registry is created on server start and passed into both the
// handshake handler and the relay; there is no package-level instance.
type Registry struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]map[uuid.UUID]*Client // userID -> connID -> client
	closed bool
	log    zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		conns: make(map[uuid.UUID]map[uuid.UUID]*Client),
		log:   log,
	}
}

// Add registers a client under its user. Fails only after Shutdown.
func (r *Registry) Add(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	set, ok := r.conns[c.UserID]
	if !ok {
		set = make(map[uuid.UUID]*Client)
		r.conns[c.UserID] = set
	}
	set[c.ID] = c

	r.log.Debug().
		Stringer("user_id", c.UserID).
		Stringer("conn_id", c.ID).
		Int("connections", len(set)).
		Msg("connection registered")

	return nil
}

// Remove unregisters a client. Idempotent; when the user's last
// connection goes, the user entry goes with it so departed users cost
// no memory.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c.ID]; !ok {
		return
	}

	delete(set, c.ID)
	if len(set) == 0 {
		delete(r.conns, c.UserID)
	}

	r.log.Debug().
		Stringer("user_id", c.UserID).
		Stringer("conn_id", c.ID).
		Msg("connection removed")
}

// Clients returns a snapshot of the user's live connections. The caller
// may range over it without holding any lock.
func (r *Registry) Clients(userID uuid.UUID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}

	clients := make([]*Client, 0, len(set))
	for _, c := range set {
		clients = append(clients, c)
	}
	return clients
}

// ConnectionCount reports the number of live connections for a user.
func (r *Registry) ConnectionCount(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// UserCount reports how many distinct users are connected.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Shutdown closes every connection and rejects further registration.
// Called once when the server stops.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	all := make([]*Client, 0)
	for _, set := range r.conns {
		for _, c := range set {
			all = append(all, c)
		}
	}
	r.conns = make(map[uuid.UUID]map[uuid.UUID]*Client)
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}

	r.log.Info().Int("connections", len(all)).Msg("registry shut down")
}
