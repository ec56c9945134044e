package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/nicky-ayoub/cardstack/internal/config"
	"github.com/nicky-ayoub/cardstack/internal/gallery"
	"github.com/nicky-ayoub/cardstack/internal/motion"
	"github.com/nicky-ayoub/cardstack/internal/scan"
	"github.com/nicky-ayoub/cardstack/internal/service"
	"github.com/nicky-ayoub/cardstack/internal/ui"
)

// fetchResult holds the result of a background catalog fetch.
type fetchResult struct {
	images []service.ImageRecord
	err    error
}

type Game struct {
	cfg    config.Config
	ctx    context.Context
	cancel context.CancelFunc

	catalog   *service.Catalog
	status    *ui.Status
	textures  *ui.TextureCache
	renderer  *ui.Renderer
	navigator *ui.BrowserNavigator
	poller    ui.Poller

	scene      *gallery.Scene
	autoDevice bool

	fetchResultChan chan fetchResult
	changes         <-chan struct{}

	width, height int
}

func newGame(parent context.Context, cfg config.Config) (*Game, error) {
	ctx, cancel := context.WithCancel(parent)
	imageService := service.NewImageService(&http.Client{Timeout: cfg.Strapi.Timeout})
	provider, label := newProvider(cfg, imageService)
	_, auto, _ := config.ParseDevice(cfg.Display.Device)

	tc := ui.NewTextureCache(ctx, imageService, ui.TextureOptions{
		Workers:         cfg.Textures.Workers,
		QueueSize:       cfg.Textures.QueueSize,
		PlaceholderSize: cfg.Textures.PlaceholderSize,
		FullSize:        cfg.Textures.FullSize,
	})
	g := &Game{
		cfg:             cfg,
		ctx:             ctx,
		cancel:          cancel,
		catalog:         service.NewCatalog(provider, nil),
		status:          ui.NewStatus(label),
		textures:        tc,
		renderer:        ui.NewRenderer(tc),
		navigator:       ui.NewBrowserNavigator(cfg.NavigateBase),
		autoDevice:      auto,
		fetchResultChan: make(chan fetchResult, 1),
		width:           cfg.Display.Width,
		height:          cfg.Display.Height,
	}

	if cfg.Source == config.SourceDir && cfg.Watch.Enabled {
		changes, err := scan.Watch(ctx, cfg.Dir, cfg.Watch.Quiet, g.status.AddLogMessage)
		if err != nil {
			// The gallery still works without live updates.
			log.Printf("watching %s: %v", cfg.Dir, err)
		} else {
			g.changes = changes
		}
	}

	g.fetch()
	return g, nil
}

// fetch loads the catalog in a background goroutine. The result is picked up
// by Update.
func (g *Game) fetch() {
	if g.status.Loading() {
		return
	}
	g.status.SetLoading()
	go func() {
		images, err := g.catalog.Images(g.ctx)
		select {
		case g.fetchResultChan <- fetchResult{images: images, err: err}:
		case <-g.ctx.Done():
		}
	}()
}

// refetch drops the cached collection and loads it again.
func (g *Game) refetch() {
	if g.status.Loading() {
		return
	}
	g.catalog.Invalidate()
	g.fetch()
}

// applyFetch mounts, updates or unmounts the scene for a fetched collection.
func (g *Game) applyFetch(result fetchResult) {
	if result.err != nil {
		log.Printf("Error fetching images: %v", result.err)
		g.status.SetError(result.err)
		return
	}
	g.status.SetLoaded(len(result.images))

	if g.scene != nil {
		if err := g.scene.SetImages(result.images); errors.Is(err, gallery.ErrNoImages) {
			g.scene.Close()
			g.scene = nil
		}
		return
	}

	opts := g.cfg.SceneOptions()
	opts.Width, opts.Height = g.width, g.height
	scene, err := gallery.New(result.images, g.navigator, opts)
	if err != nil {
		if !errors.Is(err, gallery.ErrNoImages) {
			log.Printf("Error mounting gallery: %v", err)
		}
		return
	}
	g.scene = scene
	g.status.AddLogMessage(fmt.Sprintf("Loaded %d images", g.status.Count()))
}

func (g *Game) Update() error {
	// 1. Poll all input at the beginning of the frame.
	input := g.poller.Poll(time.Now(), g.width, g.height)

	// 2. Handle non-state-dependent inputs immediately.
	if input.Quit {
		return ebiten.Termination
	}
	if input.ToggleFullscreen {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if input.Refresh {
		g.refetch()
	}

	// 3. Process results from the background fetch and the directory watcher.
	select {
	case result := <-g.fetchResultChan:
		g.applyFetch(result)
	default:
	}
	select {
	case _, ok := <-g.changes:
		if ok {
			g.status.AddLogMessage("Directory changed, reloading")
			g.refetch()
		} else {
			g.changes = nil
		}
	default:
	}

	if g.scene == nil {
		return nil
	}

	// 4. Feed the frame's gestures to the scene and advance it.
	if input.Touched && g.autoDevice {
		g.scene.SetDevice(motion.Touch)
		g.autoDevice = false
	}
	for _, ev := range input.Events {
		g.scene.HandleEvent(ev)
	}
	if input.Back {
		g.scene.Back()
	}
	g.scene.Update(1 / float64(ebiten.TPS()))

	// 5. Load textures for the new window.
	g.textures.Update(g.scene.Cards())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.scene == nil {
		g.renderer.DrawStatus(screen, g.status.Text())
		return
	}
	g.renderer.Draw(screen, g.scene)
	switch {
	case g.status.Err() != nil:
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Refresh failed: %v", g.status.Err()))
	case g.navigator.Last() != "":
		ebitenutil.DebugPrint(screen, "Opened "+g.navigator.Last())
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	// A 1:1 pixel mapping keeps hit-testing in window coordinates.
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		if g.scene != nil {
			g.scene.Resize(outsideWidth, outsideHeight)
		}
	}
	return outsideWidth, outsideHeight
}

// Close unmounts the scene and stops the background workers.
func (g *Game) Close() {
	if g.scene != nil {
		g.scene.Close()
	}
	g.cancel()
}
