// Package assets stores uploaded images and resolves image references to URLs.
package assets

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrExists is returned by Upload without Upsert when the path is taken.
var ErrExists = errors.New("assets: object already exists")

// Bucket is a logical storage bucket and the folder new uploads go to.
type Bucket struct {
	Name   string
	Folder string
}

var (
	SponsorLogos    = Bucket{Name: "sponsor-logos", Folder: "sponsors"}
	CommitteePhotos = Bucket{Name: "committee-photos", Folder: "committee"}
	RouteMaps       = Bucket{Name: "route-maps", Folder: "routes"}
)

type UploadOptions struct {
	Upsert      bool
	ContentType string
}

// Store is a blob store keyed by bucket and path.
type Store interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, opts UploadOptions) error
	PublicURL(bucket, path string) string
}

type RefKind int

const (
	RefNone RefKind = iota
	RefExternal
	RefStored
)

// Ref is an image reference: either an absolute URL used verbatim or a
// path inside an asset bucket.
type Ref struct {
	Kind  RefKind
	Value string
}

func ExternalURL(url string) Ref { return Ref{Kind: RefExternal, Value: url} }
func StoredAsset(p string) Ref   { return Ref{Kind: RefStored, Value: p} }

// ParseRef classifies a stored reference string.
func ParseRef(raw string) Ref {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Ref{}
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return ExternalURL(raw)
	default:
		return StoredAsset(raw)
	}
}

// String returns the persisted form of the reference.
func (r Ref) String() string {
	return r.Value
}

func (r Ref) IsZero() bool {
	return r.Kind == RefNone
}

// Resolve turns a reference into a public URL. Empty references give "".
func Resolve(s Store, bucket string, r Ref) string {
	switch r.Kind {
	case RefExternal:
		return r.Value
	case RefStored:
		if s == nil {
			return ""
		}
		return s.PublicURL(bucket, r.Value)
	default:
		return ""
	}
}

// ResolveString parses and resolves raw in one step.
func ResolveString(s Store, bucket, raw string) string {
	return Resolve(s, bucket, ParseRef(raw))
}

// NewPath builds "<folder>/<random-id>.<ext>" keeping the original extension.
func NewPath(folder, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "png"
	}
	return folder + "/" + uuid.NewString() + "." + ext
}

var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "svg": true,
}

// IsImage reports whether filename has an accepted image extension.
func IsImage(filename string) bool {
	return imageExts[strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))]
}

// ContentType guesses the MIME type from the path extension.
func ContentType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CleanPath rejects absolute paths and parent traversal.
func CleanPath(p string) (string, error) {
	cleaned := path.Clean("/" + p)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(p, "./") || strings.HasPrefix(p, "/") {
		return "", errors.New("assets: invalid object path " + p)
	}
	return cleaned, nil
}
