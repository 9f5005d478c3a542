// Package admin implements the back-office operations: edition lifecycle,
// entity CRUD, singleton upserts, inbox triage, reordering and uploads.
package admin

import (
	"context"
	"errors"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/assets"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// Geocoder resolves a postal address to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (models.Geocoordinates, error)
}

type Service struct {
	db       store.Store
	t        content.Tables
	assets   assets.Store
	geocoder Geocoder
	now      func() time.Time
}

type Option func(*Service)

// WithGeocoder fills practical info coordinates on save.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db store.Store, a assets.Store, opts ...Option) *Service {
	s := &Service{db: db, t: content.NewTables(db), assets: a, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// atomic runs fn with tables bound to one transaction.
func (s *Service) atomic(ctx context.Context, fn func(t content.Tables) error) error {
	return s.db.Atomic(ctx, func(tx store.Store) error {
		return fn(content.NewTables(tx))
	})
}

var errNoAssetStore = errors.New("no asset store configured")
