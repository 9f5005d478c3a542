// Package cache remembers geocoder answers per address. Addresses are folded
// so that case, accents and spacing do not matter, and a failed lookup is
// only retried once its retry delay has passed.
package cache

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/textutil"
)

// DefaultRetryAfter is how long a failed lookup is served from the cache.
const DefaultRetryAfter = 24 * time.Hour

// State is the outcome of Resolve.
type State int

const (
	// Miss means the address must be looked up: it was never seen, or its
	// last lookup failed long enough ago.
	Miss State = iota
	// Hit carries cached coordinates.
	Hit
	// Failed means the geocoder found nothing within the retry delay.
	Failed
)

// Stats counts cached addresses by outcome.
type Stats struct {
	Entries  int `json:"entries"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// backend stores encoded entries by key.
type backend interface {
	get(key string) ([]byte, error)
	put(key string, value []byte) error
	each(fn func(key string, value []byte) error) error
	close() error
}

// Addresses is the geocoder's answer cache.
type Addresses struct {
	b          backend
	now        func() time.Time
	retryAfter time.Duration
}

type Option func(*Addresses)

func WithClock(now func() time.Time) Option {
	return func(a *Addresses) { a.now = now }
}

func WithRetryAfter(d time.Duration) Option {
	return func(a *Addresses) { a.retryAfter = d }
}

func newAddresses(b backend, opts []Option) *Addresses {
	a := &Addresses{b: b, now: time.Now, retryAfter: DefaultRetryAfter}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewMemory returns a cache that lives as long as the process.
func NewMemory(opts ...Option) *Addresses {
	return newAddresses(&memory{entries: map[string][]byte{}}, opts)
}

// Key is the folded form addresses are stored under. It is empty for a blank
// address.
func Key(address string) string {
	return textutil.Fold(textutil.NormalizeSpace(address))
}

// Resolve looks address up without contacting the geocoder.
func (a *Addresses) Resolve(address string) (models.Geocoordinates, State, error) {
	key := Key(address)
	data, err := a.b.get(key)
	if err != nil || data == nil {
		return models.Geocoordinates{}, Miss, err
	}
	var geo models.Geocoordinates
	if err := json.Unmarshal(data, &geo); err != nil {
		return models.Geocoordinates{}, Miss, fmt.Errorf("decode cached %q: %w", key, err)
	}
	if !geo.IsFailed {
		return geo, Hit, nil
	}
	if a.now().Sub(time.Unix(geo.LastAttempt, 0)) < a.retryAfter {
		return models.Geocoordinates{}, Failed, nil
	}
	return models.Geocoordinates{}, Miss, nil
}

// Remember stores coordinates found for address.
func (a *Addresses) Remember(address string, geo models.Geocoordinates) error {
	geo.IsFailed = false
	return a.store(address, geo)
}

// RememberFailure records that the geocoder had no match for address.
func (a *Addresses) RememberFailure(address string) error {
	return a.store(address, models.Geocoordinates{IsFailed: true})
}

func (a *Addresses) store(address string, geo models.Geocoordinates) error {
	key := Key(address)
	if key == "" {
		return fmt.Errorf("cache: blank address")
	}
	geo.LastAttempt = a.now().Unix()
	data, err := json.Marshal(geo)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return a.b.put(key, data)
}

// Stats counts entries. Entries that cannot be decoded are counted as failed.
func (a *Addresses) Stats() (Stats, error) {
	var s Stats
	err := a.b.each(func(_ string, data []byte) error {
		s.Entries++
		var geo models.Geocoordinates
		if json.Unmarshal(data, &geo) != nil || geo.IsFailed {
			s.Failed++
		} else {
			s.Resolved++
		}
		return nil
	})
	return s, err
}

func (a *Addresses) Close() error {
	return a.b.close()
}

type memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *memory) get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memory) put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memory) each(fn func(key string, value []byte) error) error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	snapshot := make(map[string][]byte, len(keys))
	for _, k := range keys {
		snapshot[k] = m.entries[k]
	}
	m.mu.Unlock()
	slices.Sort(keys)
	for _, k := range keys {
		if err := fn(k, snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memory) close() error { return nil }
