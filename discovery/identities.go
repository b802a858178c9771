package discovery

import (
	"sync"

	"github.com/kbukum/inventory/registry"
)

// Identities hands out registration identities and remembers which source
// key holds which identity. Identities increase monotonically and are never
// reused.
type Identities struct {
	mu   sync.Mutex
	last registry.Identity
	keys map[string]registry.Identity
}

// NewIdentities creates an empty allocator.
func NewIdentities() *Identities {
	return &Identities{keys: make(map[string]registry.Identity)}
}

// Next allocates a fresh identity without binding it.
func (i *Identities) Next() registry.Identity {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.last++
	return i.last
}

// Bind records that key holds id.
func (i *Identities) Bind(key string, id registry.Identity) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys[key] = id
}

// Lookup returns the identity bound to key.
func (i *Identities) Lookup(key string) (registry.Identity, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	id, ok := i.keys[key]
	return id, ok
}

// Forget drops the binding of key.
func (i *Identities) Forget(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.keys, key)
}

// Len returns the number of bound keys.
func (i *Identities) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.keys)
}
