// Package gcs stores assets in Google Cloud Storage buckets.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Declyn50s/Traine-Savates/pkg/assets"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
)

const defaultPublicBase = "https://storage.googleapis.com"

// Store maps logical buckets to "<prefix><bucket>" GCS buckets.
type Store struct {
	client          *storage.Client
	bucketPrefix    string
	publicBase      string
	credentialsFile string
	clientOpts      []option.ClientOption
}

type OptionFunc func(*Store)

func WithBucketPrefix(prefix string) OptionFunc {
	return func(s *Store) { s.bucketPrefix = prefix }
}

func WithCredentialsFile(path string) OptionFunc {
	return func(s *Store) { s.credentialsFile = path }
}

// WithPublicBaseURL overrides the host used by PublicURL, e.g. a CDN.
func WithPublicBaseURL(base string) OptionFunc {
	return func(s *Store) {
		if base != "" {
			s.publicBase = strings.TrimRight(base, "/")
		}
	}
}

// WithClientOptions passes extra options to the storage client.
func WithClientOptions(opts ...option.ClientOption) OptionFunc {
	return func(s *Store) { s.clientOpts = append(s.clientOpts, opts...) }
}

// New builds the store and its storage client.
func New(ctx context.Context, opts ...OptionFunc) (*Store, error) {
	s := &Store{publicBase: defaultPublicBase}
	for _, opt := range opts {
		opt(s)
	}
	if s.bucketPrefix == "" {
		return nil, errors.New("gcs assets: bucket prefix not set")
	}

	clientOpts := append([]option.ClientOption{storage.WithDisabledClientMetrics()}, s.clientOpts...)
	if s.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(s.credentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs assets: failed in creating storage client: %w", err)
	}
	s.client = client
	logger.Info("GCS asset store ready (bucket prefix %s)", s.bucketPrefix)
	return s, nil
}

func (s *Store) bucketName(bucket string) string {
	return s.bucketPrefix + bucket
}

// Upload streams r to the object. Without Upsert the write is conditioned on
// the object not existing yet.
func (s *Store) Upload(ctx context.Context, bucket, p string, r io.Reader, opts assets.UploadOptions) error {
	clean, err := assets.CleanPath(p)
	if err != nil {
		return err
	}
	obj := s.client.Bucket(s.bucketName(bucket)).Object(clean)
	if !opts.Upsert {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType
	if w.ContentType == "" {
		w.ContentType = assets.ContentType(clean)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs assets: write %s/%s: %w", bucket, clean, err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return assets.ErrExists
		}
		return fmt.Errorf("gcs assets: close %s/%s: %w", bucket, clean, err)
	}
	return nil
}

func (s *Store) PublicURL(bucket, p string) string {
	return s.publicBase + "/" + s.bucketName(bucket) + "/" + strings.TrimPrefix(p, "/")
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

var _ assets.Store = (*Store)(nil)
