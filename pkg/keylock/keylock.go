// Package keylock serializes work per key using a fixed set of mutexes.
//
// Keys are mapped onto stripes with FNV-1a, so two keys may share a stripe
// but the same key always lands on the same one.
package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// Striped is a set of mutexes selected by key hash. The zero value is not usable.
type Striped struct {
	locks []sync.Mutex
}

// New returns a Striped with n stripes. If n <= 0, defaultStripes is used.
func New(n int) *Striped {
	if n <= 0 {
		n = defaultStripes
	}
	return &Striped{locks: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for key and returns its unlock func.
//
//	unlock := l.Lock(key)
//	defer unlock()
func (s *Striped) Lock(key string) func() {
	m := &s.locks[s.index(key)]
	m.Lock()
	return m.Unlock
}

// index maps key deterministically to a stripe.
func (s *Striped) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.locks)))
}
