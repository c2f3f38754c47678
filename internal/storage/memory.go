// Package storage provides the key-value backends behind session.Store.
package storage

import (
	"sort"
	"sync"

	"github.com/AlexZinkM/yieldgate/internal/session"
)

// Memory keeps every namespace in process memory.
// Writes notify the namespace's subscribers synchronously, after the lock is released.
type Memory struct {
	mu     sync.Mutex
	data   map[string]map[string]string
	subs   map[string]map[int]func(session.Change)
	nextID int
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]string),
		subs: make(map[string]map[int]func(session.Change)),
	}
}

// Namespace returns the store for one origin/profile.
func (m *Memory) Namespace(id string) session.Store {
	return &memoryNamespace{m: m, ns: id}
}

type memoryNamespace struct {
	m  *Memory
	ns string
}

func (n *memoryNamespace) Get(key string) (string, bool, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	v, ok := n.m.data[n.ns][key]
	return v, ok, nil
}

func (n *memoryNamespace) Set(key, value string) error {
	n.m.mu.Lock()
	values := n.m.data[n.ns]
	if values == nil {
		values = make(map[string]string)
		n.m.data[n.ns] = values
	}
	old, existed := values[key]
	values[key] = value
	fns := n.m.subscribersLocked(n.ns)
	n.m.mu.Unlock()

	if existed && old == value {
		return nil
	}
	notify(fns, session.Change{Key: key, OldValue: old, NewValue: value})
	return nil
}

func (n *memoryNamespace) Remove(key string) error {
	n.m.mu.Lock()
	old, existed := n.m.data[n.ns][key]
	delete(n.m.data[n.ns], key)
	fns := n.m.subscribersLocked(n.ns)
	n.m.mu.Unlock()

	if !existed {
		return nil
	}
	notify(fns, session.Change{Key: key, OldValue: old, Removed: true})
	return nil
}

func (n *memoryNamespace) Subscribe(fn func(session.Change)) func() {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()

	if n.m.subs[n.ns] == nil {
		n.m.subs[n.ns] = make(map[int]func(session.Change))
	}
	id := n.m.nextID
	n.m.nextID++
	n.m.subs[n.ns][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.m.mu.Lock()
			delete(n.m.subs[n.ns], id)
			n.m.mu.Unlock()
		})
	}
}

func (m *Memory) subscribersLocked(ns string) []func(session.Change) {
	return subscribersOf(m.subs[ns])
}

// subscribersOf returns the callbacks in registration order.
func subscribersOf(subs map[int]func(session.Change)) []func(session.Change) {
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(session.Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, subs[id])
	}
	return fns
}

func notify(fns []func(session.Change), changes ...session.Change) {
	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// diff lists the changes that turn old into next, ordered by key.
func diff(old, next map[string]string) []session.Change {
	keys := make(map[string]struct{}, len(old)+len(next))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range next {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []session.Change
	for _, k := range sorted {
		ov, hadOld := old[k]
		nv, hasNew := next[k]
		switch {
		case hadOld && !hasNew:
			changes = append(changes, session.Change{Key: k, OldValue: ov, Removed: true})
		case hasNew && (!hadOld || ov != nv):
			changes = append(changes, session.Change{Key: k, OldValue: ov, NewValue: nv})
		}
	}
	return changes
}
