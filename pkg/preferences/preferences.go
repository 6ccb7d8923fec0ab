// Package preferences remembers the last pagination settings of a listing.
//
// The stored records are a convenience only. Every Store swallows its own failures, and records
// older than FreshnessWindow are treated as absent, so callers never branch on storage health.
package preferences

import (
	"encoding/json"
	"time"
)

const FreshnessWindow = 24 * time.Hour

type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

// Record is the persisted layout: {"currentPage":3,"pageSize":25,"timestamp":1700000000000}
type Record struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	Timestamp   int64 `json:"timestamp"`
}

func (r *Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

func (r *Record) IsFresh(now time.Time) bool {
	age := now.Sub(r.Time())
	return age >= 0 && age <= FreshnessWindow
}

// Load returns the record stored under key, or nil when it is missing, unreadable or stale.
func Load(store Store, key string, now time.Time) *Record {
	if store == nil || key == "" {
		return nil
	}
	raw, ok := store.Get(key)
	if !ok {
		return nil
	}
	r := &Record{}
	if err := json.Unmarshal(raw, r); err != nil {
		return nil
	}
	if !r.IsFresh(now) {
		return nil
	}
	return r
}

func Save(store Store, key string, currentPage int, pageSize int, now time.Time) {
	if store == nil || key == "" {
		return
	}
	raw, err := json.Marshal(&Record{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		Timestamp:   now.UnixMilli(),
	})
	if err != nil {
		return
	}
	store.Set(key, raw)
}

func Clear(store Store, key string) {
	if store == nil || key == "" {
		return
	}
	store.Remove(key)
}

type NoopStore struct{}

func (NoopStore) Get(string) ([]byte, bool) { return nil, false }
func (NoopStore) Set(string, []byte)        {}
func (NoopStore) Remove(string)             {}
