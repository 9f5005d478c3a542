package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Declyn50s/Traine-Savates/pkg/cache"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
)

func TestLookupCachesResults(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/search" || r.URL.Query().Get("format") != "jsonv2" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Query().Get("q") == "Nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"46.5191","lon":"6.6323","display_name":"Place de la Gare, Lausanne"}]`))
	}))
	defer srv.Close()

	now := time.Now()
	c := New(srv.URL, "test-agent", srv.Client(), WithCache(cache.NewMemory(cache.WithClock(func() time.Time { return now }))))
	ctx := context.Background()

	geo, err := c.Lookup(ctx, "Place de la Gare,  Lausanne")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	lat, lon, err := Coordinates(geo)
	if err != nil || lat != 46.5191 || lon != 6.6323 {
		t.Fatalf("Coordinates = %v, %v, %v", lat, lon, err)
	}
	if _, err := c.Lookup(ctx, "place de la gare, LAUSANNE"); err != nil {
		t.Fatalf("cached Lookup: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("server hits = %d, want 1", got)
	}

	if _, err := c.Lookup(ctx, "Nowhere"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
	if _, err := c.Lookup(ctx, "Nowhere"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("failed lookup retried too early, hits = %d", got)
	}

	now = now.Add(2 * cache.DefaultRetryAfter)
	_, _ = c.Lookup(ctx, "Nowhere")
	if got := hits.Load(); got != 3 {
		t.Fatalf("failed lookup not retried after delay, hits = %d", got)
	}

	if diff := cmp.Diff(cache.Stats{Entries: 2, Resolved: 1, Failed: 1}, c.CacheStatistics()); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
}

func TestLookupServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "", srv.Client())
	_, err := c.Lookup(context.Background(), "Lausanne")
	if err == nil || errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want transport error", err)
	}
}

func TestMapsURL(t *testing.T) {
	t.Parallel()

	if got := MapsURL(46.5, 6.25); got != "https://www.google.com/maps/search/?api=1&query=46.500000,6.250000" {
		t.Fatalf("MapsURL = %q", got)
	}
}

type countingCache struct {
	*cache.Addresses
	writes int
}

func (c *countingCache) Remember(address string, geo models.Geocoordinates) error {
	c.writes++
	return c.Addresses.Remember(address, geo)
}

func TestLookupUsesInjectedCache(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer srv.Close()

	addresses := cache.NewMemory()
	if err := addresses.Remember("Chemin des Savates 1, Pully", models.Geocoordinates{Lat: "46.51", Lon: "6.66"}); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	store := &countingCache{Addresses: addresses}
	c := New(srv.URL, "", srv.Client(), WithCache(store))

	geo, err := c.Lookup(context.Background(), "chemin des savates 1,  PULLY")
	if err != nil || geo.Lat != "46.51" {
		t.Fatalf("Lookup = %+v, %v", geo, err)
	}
	if store.writes != 0 {
		t.Fatalf("cache hit rewrote the entry %d times", store.writes)
	}
	if stats := c.CacheStatistics(); stats.Entries != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
