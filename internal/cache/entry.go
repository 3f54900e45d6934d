package cache

import (
	"encoding/json"
	"time"
)

// Entry is a single cached value with TTL and access bookkeeping.
// The JSON field names form the on-disk schema and must stay stable.
type Entry struct {
	Key          string          `json:"key"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	AccessCount  int             `json:"access_count"`
	LastAccessed *time.Time      `json:"last_accessed"`
}

// newEntry creates an entry timestamped at now. A ttl of zero or less
// means the entry never expires.
func newEntry(key string, data json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	e := &Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	return e
}

// Expired reports whether the entry has passed its expiry time.
// Entries without an expiry time never expire.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// Touch records a successful read.
func (e *Entry) Touch(now time.Time) {
	e.AccessCount++
	t := now
	e.LastAccessed = &t
}

// sizeEstimate approximates the entry's in-memory footprint.
func (e *Entry) sizeEstimate() int64 {
	return int64(len(e.Key) + len(e.Data))
}
