package localfs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Declyn50s/Traine-Savates/pkg/assets"
)

func TestUploadAndServe(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	p := "sponsors/logo.png"
	if err := s.Upload(ctx, assets.SponsorLogos.Name, p, strings.NewReader("v1"), assets.UploadOptions{}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	err = s.Upload(ctx, assets.SponsorLogos.Name, p, strings.NewReader("v2"), assets.UploadOptions{})
	if !errors.Is(err, assets.ErrExists) {
		t.Fatalf("second upload err = %v, want ErrExists", err)
	}
	if err := s.Upload(ctx, assets.SponsorLogos.Name, p, strings.NewReader("v3"), assets.UploadOptions{Upsert: true}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	url := s.PublicURL(assets.SponsorLogos.Name, p)
	if url != "/assets/sponsor-logos/sponsors/logo.png" {
		t.Fatalf("PublicURL = %q", url)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || string(body) != "v3" {
		t.Fatalf("GET %s = %d %q, want 200 %q", url, rec.Code, body, "v3")
	}
}

func TestUploadRejectsTraversal(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.Upload(ctx, "sponsor-logos", "../../escape.png", strings.NewReader("x"), assets.UploadOptions{}); err == nil {
		t.Fatal("traversal path accepted")
	}
	if err := s.Upload(ctx, "../up", "a.png", strings.NewReader("x"), assets.UploadOptions{}); err == nil {
		t.Fatal("traversal bucket accepted")
	}
}
