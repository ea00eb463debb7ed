// Package registry maps opaque numeric identifiers to live client
// connections so raw OS handles never appear on the wire.
//
// Identifiers are allocated from a monotonically increasing counter and are
// never reused, even after removal: any operation against a removed id is
// reported as "not found", never undefined behavior. The table is shared by
// every concurrently running accept and read loop, so all access goes
// through a mutex with suspension-free critical sections.
package registry

import (
	"net"
	"strconv"
	"sync"
)

// ID is an opaque, process-unique resource identifier. It is totally
// ordered by allocation time and textually serializable as a decimal token.
type ID uint64

// String returns the wire form of the identifier.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses the wire form of an identifier. Any non-decimal input is
// an error; the caller maps it to the verb's failure payload.
func ParseID(token string) (ID, error) {
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

// Registry is the id-to-connection table.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	conns  map[ID]net.Conn
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		conns: make(map[ID]net.Conn),
	}
}

// Add registers a connection and returns its fresh identifier. No
// connection is ever shared between two ids.
func (r *Registry) Add(conn net.Conn) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := ID(r.nextID)
	r.conns[id] = conn
	return id
}

// Find looks up a connection by id.
func (r *Registry) Find(id ID) (net.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	return conn, ok
}

// Remove deletes the entry and returns the connection it held, so the
// caller can release the handle after the table no longer references it.
func (r *Registry) Remove(id ID) (net.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	return conn, ok
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
