package ui

import (
	"context"
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nicky-ayoub/cardstack/internal/service"
	"github.com/nicky-ayoub/cardstack/internal/window"
)

// Tier is the resolution class of a card texture.
type Tier int

const (
	// Placeholder textures are small and requested for every card in the window.
	Placeholder Tier = iota
	// Full textures are requested only for cards near the center.
	Full
)

// TextureOptions sizes the cache.
type TextureOptions struct {
	Workers         int
	QueueSize       int
	PlaceholderSize int // longest side in pixels
	FullSize        int
}

// textureJob represents a request to load one texture.
type textureJob struct {
	key  string
	src  string
	tier Tier
}

// textureResult holds a decoded image, ready to be converted to an ebiten.Image.
type textureResult struct {
	key string
	img image.Image
}

// TextureCache loads card textures on background workers and keeps the ones
// the current window needs.
type TextureCache struct {
	ctx          context.Context
	imageService *service.ImageService
	opts         TextureOptions

	cache         map[string]*ebiten.Image
	pendingJobs   map[string]bool
	jobQueue      chan textureJob
	resultQueue   chan textureResult
	cacheMu       sync.RWMutex
	pendingJobsMu sync.Mutex

	fallback *ebiten.Image
}

// NewTextureCache starts opts.Workers loaders that run until ctx is done.
func NewTextureCache(ctx context.Context, ivs *service.ImageService, opts TextureOptions) *TextureCache {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 50
	}
	tc := &TextureCache{
		ctx:          ctx,
		imageService: ivs,
		opts:         opts,
		cache:        make(map[string]*ebiten.Image),
		pendingJobs:  make(map[string]bool),
		jobQueue:     make(chan textureJob, opts.QueueSize),
		resultQueue:  make(chan textureResult, opts.QueueSize),
	}

	tc.fallback = ebiten.NewImage(4, 4)
	tc.fallback.Fill(color.RGBA{R: 0x33, G: 0x33, B: 0x38, A: 0xff})

	for i := 0; i < opts.Workers; i++ {
		go tc.loader()
	}
	return tc
}

// sourceFor picks the URL a tier loads for a record. Records without a
// placeholder fall back to the thumbnail.
func sourceFor(rec service.ImageRecord, tier Tier) string {
	if tier == Placeholder && rec.PlaceholderURL != "" {
		return rec.PlaceholderURL
	}
	return rec.ThumbnailURL
}

func textureKey(src string, tier Tier) string {
	if tier == Full {
		return "full:" + src
	}
	return "placeholder:" + src
}

// wantedJobs lists the textures a window needs: a placeholder for every card
// and a full texture for the cards flagged LoadFullRes.
func wantedJobs(cards []window.Card) map[string]textureJob {
	jobs := make(map[string]textureJob, len(cards)*2)
	for _, c := range cards {
		src := sourceFor(c.Image, Placeholder)
		jobs[textureKey(src, Placeholder)] = textureJob{key: textureKey(src, Placeholder), src: src, tier: Placeholder}
		if c.LoadFullRes {
			src := sourceFor(c.Image, Full)
			jobs[textureKey(src, Full)] = textureJob{key: textureKey(src, Full), src: src, tier: Full}
		}
	}
	return jobs
}

// fitSize scales w x h down so the longest side is at most limit.
func fitSize(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// loader is a background worker that processes texture loading jobs.
func (tc *TextureCache) loader() {
	for {
		select {
		case <-tc.ctx.Done():
			return
		case job := <-tc.jobQueue:
			img, err := tc.load(job)
			if err != nil {
				log.Printf("texture %s: %v", job.src, err)
				tc.pendingJobsMu.Lock()
				delete(tc.pendingJobs, job.key) // Un-pend on error so it can be retried
				tc.pendingJobsMu.Unlock()
				continue
			}
			select {
			case tc.resultQueue <- textureResult{key: job.key, img: img}:
			case <-tc.ctx.Done():
				return
			}
		}
	}
}

func (tc *TextureCache) load(job textureJob) (image.Image, error) {
	var img image.Image
	if job.tier == Placeholder && !service.IsRemote(job.src) {
		// Try to get the efficient embedded EXIF thumbnail first.
		img, _ = tc.imageService.GetEmbeddedThumbnail(job.src)
	}
	if img == nil {
		decoded, err := tc.imageService.Decode(job.src)
		if err != nil {
			return nil, err
		}
		img = decoded
	}

	limit := tc.opts.FullSize
	if job.tier == Placeholder {
		limit = tc.opts.PlaceholderSize
	}
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), limit)
	if w != b.Dx() || h != b.Dy() {
		img = transform.Resize(img, w, h, transform.Linear)
	}
	return img, nil
}

// Update uploads finished textures, queues missing ones for cards and evicts
// textures no card needs. It must be called from the ebiten Update goroutine.
func (tc *TextureCache) Update(cards []window.Card) {
	// Process any results that have come back from the loader goroutines.
	// This must be done in the main thread as ebiten.Image creation is not thread-safe.
	wanted := wantedJobs(cards)
	for processing := true; processing; {
		select {
		case result := <-tc.resultQueue:
			tc.pendingJobsMu.Lock()
			delete(tc.pendingJobs, result.key)
			tc.pendingJobsMu.Unlock()
			if _, ok := wanted[result.key]; !ok {
				continue
			}
			ebitenImg := ebiten.NewImageFromImage(result.img)
			tc.cacheMu.Lock()
			tc.cache[result.key] = ebitenImg
			tc.cacheMu.Unlock()
		default:
			processing = false
		}
	}

	tc.cacheMu.Lock()
	for key, img := range tc.cache {
		if _, ok := wanted[key]; !ok {
			img.Deallocate()
			delete(tc.cache, key)
		}
	}
	tc.cacheMu.Unlock()

	for key, job := range wanted {
		tc.cacheMu.RLock()
		_, inCache := tc.cache[key]
		tc.cacheMu.RUnlock()
		if inCache {
			continue
		}

		tc.pendingJobsMu.Lock()
		if !tc.pendingJobs[key] {
			tc.pendingJobs[key] = true
			select {
			case tc.jobQueue <- job:
			default:
				// Job queue is full, we'll try again on the next frame.
				delete(tc.pendingJobs, key)
			}
		}
		tc.pendingJobsMu.Unlock()
	}
}

// Texture returns the best loaded texture for a card and whether it is real.
// The fallback texture is returned while nothing has loaded.
func (tc *TextureCache) Texture(c window.Card) (*ebiten.Image, bool) {
	tc.cacheMu.RLock()
	defer tc.cacheMu.RUnlock()
	if c.LoadFullRes {
		if img, ok := tc.cache[textureKey(sourceFor(c.Image, Full), Full)]; ok {
			return img, true
		}
	}
	if img, ok := tc.cache[textureKey(sourceFor(c.Image, Placeholder), Placeholder)]; ok {
		return img, true
	}
	return tc.fallback, false
}
