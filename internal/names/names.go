// Package names interns type, field and variant names.
//
// Schemas hand names to the wire protocol on every traversal. Interning keeps
// one long-lived copy per distinct name for the life of the process and gives
// each a small integer handle. The table only grows; in practice it is bounded
// by the static set of names in the data model being introspected.
package names

import (
	"strings"
	"sync"
)

// Handle identifies an interned name. The zero Handle is the empty name.
type Handle uint32

// Cache is a goroutine-safe intern table.
type Cache struct {
	mu    sync.RWMutex
	ids   map[string]Handle
	names []string
}

// New returns an empty cache with the empty name preinterned as handle 0.
func New() *Cache {
	return &Cache{
		ids:   map[string]Handle{"": 0},
		names: []string{""},
	}
}

// Intern returns the handle for s, adding it on first sight.
func (c *Cache) Intern(s string) Handle {
	c.mu.RLock()
	h, ok := c.ids[s]
	c.mu.RUnlock()
	if ok {
		return h
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.ids[s]; ok {
		return h
	}
	// Clone so callers' backing arrays (decoded documents, mmaps) are not pinned.
	owned := strings.Clone(s)
	h = Handle(len(c.names))
	c.names = append(c.names, owned)
	c.ids[owned] = h
	return h
}

// Lookup returns the name for h, or "" for an unknown handle.
func (c *Cache) Lookup(h Handle) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(h) < len(c.names) {
		return c.names[h]
	}
	return ""
}

// String returns the canonical copy of s.
func (c *Cache) String(s string) string {
	return c.Lookup(c.Intern(s))
}

// Strings interns every element of ss into a new slice.
func (c *Cache) Strings(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = c.String(s)
	}
	return out
}

// Len returns the number of interned names, including the empty name.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

var process = New()

// Intern interns s in the process-wide cache.
func Intern(s string) Handle { return process.Intern(s) }

// Lookup resolves h in the process-wide cache.
func Lookup(h Handle) string { return process.Lookup(h) }

// String returns the process-wide canonical copy of s.
func String(s string) string { return process.String(s) }

// Strings interns ss in the process-wide cache.
func Strings(ss []string) []string { return process.Strings(ss) }

// Len reports the size of the process-wide cache.
func Len() int { return process.Len() }
