package admin

import (
	"context"
	"strings"

	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/geocode"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// GetClubContent returns the club singleton, empty when never saved.
func (s *Service) GetClubContent(ctx context.Context) (models.ClubContent, error) {
	c, _, err := s.t.Club.First(ctx, store.Query{})
	return c, content.StoreError("load club content", err)
}

// SaveClubContent updates the club singleton, creating it on first save.
func (s *Service) SaveClubContent(ctx context.Context, c models.ClubContent) (models.ClubContent, error) {
	c.ClubIntro = strings.TrimSpace(c.ClubIntro)
	c.ClubHistory = strings.TrimSpace(c.ClubHistory)
	c.ClubSpirit = strings.TrimSpace(c.ClubSpirit)
	c.ID, c.CreatedAt, c.UpdatedAt = "", "", ""
	var saved models.ClubContent
	err := s.atomic(ctx, func(t content.Tables) error {
		var err error
		saved, err = upsertSingleton(ctx, t.Club, c, func(v models.ClubContent) string { return v.ID })
		return err
	})
	return saved, content.StoreError("save club content", err)
}

func (s *Service) GetPracticalInfo(ctx context.Context) (models.PracticalInfo, error) {
	p, _, err := s.t.Practical.First(ctx, store.Query{})
	return p, content.StoreError("load practical info", err)
}

// SavePracticalInfo updates the practical info singleton. When a geocoder is
// configured and the address has no coordinates yet they are looked up;
// geocoding failures never block the save.
func (s *Service) SavePracticalInfo(ctx context.Context, p models.PracticalInfo) (models.PracticalInfo, error) {
	p.Address = strings.TrimSpace(p.Address)
	p.GoogleMapsURL = strings.TrimSpace(p.GoogleMapsURL)
	p.ID, p.CreatedAt, p.UpdatedAt = "", "", ""
	s.locate(ctx, &p)

	var saved models.PracticalInfo
	err := s.atomic(ctx, func(t content.Tables) error {
		var err error
		saved, err = upsertSingleton(ctx, t.Practical, p, func(v models.PracticalInfo) string { return v.ID })
		return err
	})
	return saved, content.StoreError("save practical info", err)
}

func (s *Service) locate(ctx context.Context, p *models.PracticalInfo) {
	if s.geocoder == nil || p.Address == "" || (p.Latitude != nil && p.Longitude != nil) {
		return
	}
	geo, err := s.geocoder.Lookup(ctx, p.Address)
	if err != nil {
		logger.Warn("Could not geocode %q: %v", p.Address, err)
		return
	}
	lat, lon, err := geocode.Coordinates(geo)
	if err != nil {
		logger.Warn("Invalid coordinates for %q: %v", p.Address, err)
		return
	}
	p.Latitude, p.Longitude = &lat, &lon
	if p.GoogleMapsURL == "" {
		p.GoogleMapsURL = geocode.MapsURL(lat, lon)
	}
	logger.Debug("Geocoded %q to %.6f,%.6f", p.Address, lat, lon)
}

// upsertSingleton replaces the first row of tbl or inserts v when empty.
func upsertSingleton[T any](ctx context.Context, tbl store.Table[T], v T, id func(T) string) (T, error) {
	current, ok, err := tbl.First(ctx, store.Query{})
	if err != nil {
		return v, err
	}
	if !ok {
		return tbl.Insert(ctx, v)
	}
	return tbl.Replace(ctx, id(current), v)
}
