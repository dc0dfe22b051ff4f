// Package realtime tracks live websocket sessions and feeds the
// clients-updated broadcast channel.
package realtime

import "sync"

// Registry is a concurrent map of live connection ids to connection
// handles. Connect and disconnect events may arrive from many goroutines
// at once; all mutations are serialized by the mutex so Count is always
// consistent with the entries actually present.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register inserts the entry for id, replacing any existing one. The
// replaced client, if any, is returned so the caller can release it; no
// two entries for the same id ever coexist.
func (r *Registry) Register(id string, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.clients[id]
	r.clients[id] = c
	return previous
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, id)
}

// Count returns the current number of live entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}

// Clients returns a snapshot of the currently registered handles.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
