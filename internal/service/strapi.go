package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// StrapiProvider reads the gallery-images collection of a Strapi CMS.
type StrapiProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	// PageFetchLimit bounds concurrent page requests. Zero means 4.
	PageFetchLimit int
}

// NewStrapiProvider returns a provider with a client timing out after timeout.
func NewStrapiProvider(baseURL, apiKey string, timeout time.Duration) *StrapiProvider {
	return &StrapiProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

type strapiOwnership struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type strapiFormat struct {
	URL string `json:"url"`
}

type strapiMedia struct {
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Formats struct {
		Thumbnail *strapiFormat `json:"thumbnail"`
		Medium    *strapiFormat `json:"medium"`
	} `json:"formats"`
}

type strapiItem struct {
	Title            string           `json:"title"`
	Media            *strapiMedia     `json:"Media"`
	Snippet          *strapiFormat    `json:"snippet"`
	OwnershipType    string           `json:"OwnershipType"`
	ProjectOwnership *strapiOwnership `json:"project_ownership"`
	ArticleOwnership *strapiOwnership `json:"article_ownership"`
}

type strapiResponse struct {
	Data []strapiItem `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageCount int `json:"pageCount"`
		} `json:"pagination"`
	} `json:"meta"`
}

// FetchImages requests every page of the collection and returns the complete
// records in API order.
func (p *StrapiProvider) FetchImages(ctx context.Context) ([]ImageRecord, error) {
	if p.BaseURL == "" || p.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	first, err := p.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}
	pages := make([][]strapiItem, max(first.Meta.Pagination.PageCount, 1))
	pages[0] = first.Data

	if len(pages) > 1 {
		limit := p.PageFetchLimit
		if limit <= 0 {
			limit = 4
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i := 1; i < len(pages); i++ {
			g.Go(func() error {
				resp, err := p.fetchPage(gctx, i+1)
				if err != nil {
					return err
				}
				pages[i] = resp.Data
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var records []ImageRecord
	for _, page := range pages {
		for _, item := range page {
			if r, ok := item.record(p.BaseURL); ok {
				records = append(records, r)
			}
		}
	}
	return records, nil
}

func (p *StrapiProvider) fetchPage(ctx context.Context, page int) (*strapiResponse, error) {
	q := url.Values{}
	q.Set("populate", "*")
	q.Set("pagination[page]", strconv.Itoa(page))
	endpoint := p.BaseURL + "/api/gallery-images?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching images from strapi: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching images from strapi: %s", res.Status)
	}
	var body strapiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding strapi page %d: %w", page, err)
	}
	return &body, nil
}

// record maps an API item to an ImageRecord, reporting false for incomplete items.
func (it strapiItem) record(base string) (ImageRecord, bool) {
	r := ImageRecord{Title: it.Title, Width: 1, Height: 1}
	if m := it.Media; m != nil {
		if m.Width > 0 {
			r.Width = m.Width
		}
		if m.Height > 0 {
			r.Height = m.Height
		}
		r.FullURL = absoluteURL(base, m.URL)
		r.ThumbnailURL = r.FullURL
		if m.Formats.Medium != nil && m.Formats.Medium.URL != "" {
			r.ThumbnailURL = absoluteURL(base, m.Formats.Medium.URL)
		}
		if m.Formats.Thumbnail != nil {
			r.PlaceholderURL = absoluteURL(base, m.Formats.Thumbnail.URL)
		}
	}
	if it.Snippet != nil {
		r.SnippetURL = absoluteURL(base, it.Snippet.URL)
	}

	var owner *strapiOwnership
	switch it.OwnershipType {
	case "project":
		owner = it.ProjectOwnership
	case "article":
		owner = it.ArticleOwnership
	}
	if owner != nil {
		r.OwnerTitle = owner.Title
		r.OwnerSlug = owner.Slug
	}
	return r, r.Valid()
}

// absoluteURL resolves the relative upload paths Strapi returns for local storage.
func absoluteURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}
