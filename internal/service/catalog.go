package service

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Catalog owns the fetched image collection. The first call to Images fetches
// from the provider; later calls reuse the cache until Invalidate is called.
// Every call returns a freshly shuffled copy.
type Catalog struct {
	provider Provider

	mu     sync.Mutex
	rng    *rand.Rand
	images []ImageRecord
	loaded bool
}

// NewCatalog returns a catalog over provider. A nil rng shuffles with the
// global source.
func NewCatalog(provider Provider, rng *rand.Rand) *Catalog {
	return &Catalog{provider: provider, rng: rng}
}

// Images returns the collection in random order. Errors are not cached.
func (c *Catalog) Images(ctx context.Context) ([]ImageRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		images, err := c.provider.FetchImages(ctx)
		if err != nil {
			return nil, err
		}
		c.images = filterValid(images)
		c.loaded = true
	}

	out := make([]ImageRecord, len(c.images))
	copy(out, c.images)
	c.shuffle(out)
	return out, nil
}

// Invalidate drops the cache so the next Images call refetches.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = nil
	c.loaded = false
}

func (c *Catalog) shuffle(images []ImageRecord) {
	swap := func(i, j int) { images[i], images[j] = images[j], images[i] }
	if c.rng != nil {
		c.rng.Shuffle(len(images), swap)
		return
	}
	rand.Shuffle(len(images), swap)
}
