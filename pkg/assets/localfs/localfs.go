// Package localfs keeps uploaded assets in a directory tree served over HTTP.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Declyn50s/Traine-Savates/pkg/assets"
)

// Store writes objects to <root>/<bucket>/<path>.
type Store struct {
	root    string
	baseURL string
}

// New creates the root directory. baseURL is the prefix the files are served
// under, "/assets" when empty.
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", root, err)
	}
	if baseURL == "" {
		baseURL = "/assets"
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *Store) file(bucket, p string) (string, error) {
	b, err := assets.CleanPath(bucket)
	if err != nil || strings.Contains(b, "/") {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	clean, err := assets.CleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, b, filepath.FromSlash(clean)), nil
}

func (s *Store) Upload(ctx context.Context, bucket, p string, r io.Reader, opts assets.UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.file(bucket, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", p, err)
	}
	if !opts.Upsert {
		if _, err := os.Stat(target); err == nil {
			return assets.ErrExists
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if !opts.Upsert {
		// Link fails when another upload won the race for target.
		if err := os.Link(tmp.Name(), target); err != nil {
			if errors.Is(err, os.ErrExist) {
				return assets.ErrExists
			}
			return fmt.Errorf("failed to store %s: %w", p, err)
		}
		return nil
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store %s: %w", p, err)
	}
	return nil
}

func (s *Store) PublicURL(bucket, p string) string {
	return s.baseURL + "/" + bucket + "/" + strings.TrimPrefix(p, "/")
}

// Handler serves stored files; mount it at the base URL.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(s.baseURL+"/", http.FileServer(http.Dir(s.root)))
}

var _ assets.Store = (*Store)(nil)
