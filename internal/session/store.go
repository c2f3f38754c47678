// Package session owns the persisted session record and the gate that reads it.
//
// All reads and writes of the record go through a Store, which models an
// origin-scoped, durable string-to-string map (a browser's local storage).
// Subscribers are told about every write so that other views of the same
// origin can re-evaluate without a reload.
package session

// Change describes a single key write observed by a Store subscriber.
type Change struct {
	Key      string
	OldValue string
	NewValue string
	Removed  bool
}

// Store is the durable key-value namespace behind a session.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes key, replacing any previous value. Last write wins.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
	// Subscribe registers fn for every subsequent change until cancel is called.
	Subscribe(fn func(Change)) (cancel func())
}
