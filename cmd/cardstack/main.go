package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/nicky-ayoub/cardstack/internal/config"
	"github.com/nicky-ayoub/cardstack/internal/service"
)

// flagValues holds the command-line overrides of the config file.
type flagValues struct {
	configPath string
	dir        string
	source     string
	device     string
	width      int
	height     int
}

func main() {
	log.SetPrefix("cardstack: ")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	fv := &flagValues{}
	cmd := &cobra.Command{
		Use:   "cardstack [dir]",
		Short: "Browse an image collection as an infinite 3D card stack",
		Long: `cardstack shows images from a Strapi gallery or a local directory as a
scrollable stack of cards. Scroll or drag to move through the stack, click a
card to focus it and open its owner's page. Escape returns to the overview.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fv, args)
			if err != nil {
				return err
			}
			return runGallery(cfg)
		},
	}
	addFlags(cmd, fv)

	listCmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "Fetch the collection and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fv, args)
			if err != nil {
				return err
			}
			return listImages(cmd.Context(), cfg, cmd)
		},
	}
	cmd.AddCommand(listCmd)
	return cmd
}

// addFlags registers the config overrides shared by every subcommand.
func addFlags(cmd *cobra.Command, fv *flagValues) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&fv.configPath, "config", config.DefaultPath, "Path to the YAML config file")
	flags.StringVar(&fv.dir, "dir", "", "Directory to scan for images (implies --source dir)")
	flags.StringVar(&fv.source, "source", "", "Image source: strapi or dir")
	flags.StringVar(&fv.device, "device", "", "Scroll tuning: auto, pointer or touch")
	flags.IntVar(&fv.width, "width", 0, "Window width")
	flags.IntVar(&fv.height, "height", 0, "Window height")
}

// loadConfig layers the config file, the environment, flags and the
// positional directory, in that order.
func loadConfig(cmd *cobra.Command, fv *flagValues, args []string) (config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = fv.source
	}
	if flags.Changed("dir") {
		cfg.Dir = fv.dir
		cfg.Source = config.SourceDir
	}
	if len(args) > 0 {
		cfg.Dir = args[0]
		cfg.Source = config.SourceDir
	}
	if flags.Changed("device") {
		cfg.Display.Device = fv.device
	}
	if flags.Changed("width") {
		cfg.Display.Width = fv.width
	}
	if flags.Changed("height") {
		cfg.Display.Height = fv.height
	}
	return cfg, cfg.Validate()
}

// newProvider builds the image source named by cfg and a label for status text.
func newProvider(cfg config.Config, images *service.ImageService) (service.Provider, string) {
	if cfg.Source == config.SourceDir {
		return service.NewScannerService(cfg.Dir, images, func(msg string) { log.Print(msg) }), cfg.Dir
	}
	p := service.NewStrapiProvider(cfg.Strapi.BaseURL, cfg.Strapi.APIKey, cfg.Strapi.Timeout)
	p.PageFetchLimit = cfg.Strapi.PageFetchLimit
	return p, "strapi"
}

func listImages(ctx context.Context, cfg config.Config, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	provider, _ := newProvider(cfg, service.NewImageService(&http.Client{Timeout: cfg.Strapi.Timeout}))
	images, err := service.NewCatalog(provider, nil).Images(ctx)
	if err != nil {
		return fmt.Errorf("fetching images: %w", err)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tOWNER\tSIZE\tTHUMBNAIL")
	for _, img := range images {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\n", img.Title, img.OwnerSlug, img.Width, img.Height, img.ThumbnailURL)
	}
	return w.Flush()
}

func runGallery(cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	game, err := newGame(ctx, cfg)
	if err != nil {
		return err
	}
	defer game.Close()

	ebiten.SetWindowSize(cfg.Display.Width, cfg.Display.Height)
	ebiten.SetWindowTitle(cfg.Display.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("running gallery: %w", err)
	}
	return nil
}
