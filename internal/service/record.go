// Package service provides the image collection behind the gallery: records,
// the providers that fetch them, and the catalog that caches them.
package service

import (
	"context"
	"errors"
)

// ErrMissingCredentials is returned when a remote provider has no endpoint or key.
var ErrMissingCredentials = errors.New("missing image source credentials")

// ImageRecord describes one gallery image. Records are immutable once fetched.
type ImageRecord struct {
	Title          string
	ThumbnailURL   string // default card texture
	PlaceholderURL string // low-resolution texture; may be empty
	FullURL        string
	SnippetURL     string // optional
	Width, Height  int
	OwnerTitle     string
	OwnerSlug      string
}

// Valid reports whether the fields the gallery needs are present.
func (r ImageRecord) Valid() bool {
	return r.Title != "" && r.ThumbnailURL != "" && r.OwnerTitle != "" && r.OwnerSlug != ""
}

// AspectRatio is width over height, 1 for records without dimensions.
func (r ImageRecord) AspectRatio() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 1
	}
	return float64(r.Width) / float64(r.Height)
}

// Provider fetches the ordered image collection.
type Provider interface {
	FetchImages(ctx context.Context) ([]ImageRecord, error)
}

// filterValid drops incomplete records.
func filterValid(records []ImageRecord) []ImageRecord {
	out := make([]ImageRecord, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
