package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/cache"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/textutil"
)

// ErrNoResult is returned when the geocoder has no match for an address.
var ErrNoResult = errors.New("geocode: no result")

// Cache keeps geocoder answers per address.
type Cache interface {
	Resolve(address string) (models.Geocoordinates, cache.State, error)
	Remember(address string, geo models.Geocoordinates) error
	RememberFailure(address string) error
	Stats() (cache.Stats, error)
}

// Client queries a Nominatim-compatible search endpoint and caches answers
// per address.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	cache     Cache
}

type Option func(*Client)

// WithCache replaces the in-memory cache, e.g. with a persistent one.
func WithCache(c Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

func New(endpoint, userAgent string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		userAgent: userAgent,
		http:      httpClient,
		cache:     cache.NewMemory(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns coordinates for address.
func (c *Client) Lookup(ctx context.Context, address string) (models.Geocoordinates, error) {
	if cache.Key(address) == "" {
		return models.Geocoordinates{}, ErrNoResult
	}

	cached, state, err := c.cache.Resolve(address)
	if err != nil {
		logger.Warn("Address cache read failed for '%s': %v", address, err)
	}
	switch state {
	case cache.Hit:
		return cached, nil
	case cache.Failed:
		return models.Geocoordinates{}, ErrNoResult
	}

	logger.Debug("No address cache entry for '%s', fetching from server", address)
	geo, err := c.fetch(ctx, textutil.NormalizeSpace(address))
	switch {
	case errors.Is(err, ErrNoResult):
		if err := c.cache.RememberFailure(address); err != nil {
			logger.Warn("Failed to cache missing address '%s': %v", address, err)
		}
		return models.Geocoordinates{}, ErrNoResult
	case err != nil:
		return models.Geocoordinates{}, err
	}
	if err := c.cache.Remember(address, geo); err != nil {
		logger.Warn("Failed to cache geocoordinates for '%s': %v", address, err)
	}
	return geo, nil
}

func (c *Client) fetch(ctx context.Context, query string) (models.Geocoordinates, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("accept-language", "fr")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.Geocoordinates{}, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return models.Geocoordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return models.Geocoordinates{}, fmt.Errorf("geocode request: status %d", res.StatusCode)
	}

	var results []models.Geocoordinates
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return models.Geocoordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 || results[0].Lat == "" || results[0].Lon == "" {
		return models.Geocoordinates{}, ErrNoResult
	}
	return results[0], nil
}

// Coordinates parses the cached lat/lon strings.
func Coordinates(geo models.Geocoordinates) (lat, lon float64, err error) {
	if lat, err = strconv.ParseFloat(geo.Lat, 64); err != nil {
		return 0, 0, fmt.Errorf("parse latitude %q: %w", geo.Lat, err)
	}
	if lon, err = strconv.ParseFloat(geo.Lon, 64); err != nil {
		return 0, 0, fmt.Errorf("parse longitude %q: %w", geo.Lon, err)
	}
	return lat, lon, nil
}

// MapsURL links to a Google Maps pin at lat/lon.
func MapsURL(lat, lon float64) string {
	return "https://www.google.com/maps/search/?api=1&query=" +
		strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lon, 'f', 6, 64)
}

// CacheStatistics reports cached addresses by outcome.
func (c *Client) CacheStatistics() cache.Stats {
	stats, err := c.cache.Stats()
	if err != nil {
		logger.Warn("Failed to read address cache: %v", err)
	}
	return stats
}
