package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nicky-ayoub/cardstack/internal/scan"
	"golang.org/x/sync/errgroup"
)

// FileScanner abstracts file scanning.
type FileScanner interface {
	Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem
}

// ScannerService builds image records from the files under a directory.
type ScannerService struct {
	FileScan   FileScanner
	Images     *ImageService
	Extensions map[string]bool // Supported image extensions
	Dir        string
	Logger     scan.LoggerFunc
	// InfoLimit bounds concurrent metadata reads. Zero means 8.
	InfoLimit int
}

// NewScannerService constructs a directory-backed provider.
func NewScannerService(dir string, images *ImageService, logger scan.LoggerFunc) *ScannerService {
	exts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
	return &ScannerService{
		FileScan:   &scan.FileScannerImpl{Extensions: exts},
		Images:     images,
		Extensions: exts,
		Dir:        dir,
		Logger:     logger,
	}
}

// FetchImages scans Dir and returns one record per readable image, sorted by path.
// Files whose headers cannot be decoded are skipped.
func (s *ScannerService) FetchImages(ctx context.Context) ([]ImageRecord, error) {
	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", s.Dir, err)
	}
	items := scan.Collect(s.FileScan.Run(root, s.Logger))

	records := make([]ImageRecord, len(items))
	limit := s.InfoLimit
	if limit <= 0 {
		limit = 8
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := s.Images.GetImageInfo(item.Path)
			if err != nil {
				if s.Logger != nil {
					s.Logger(fmt.Sprintf("skipping %s: %v", item.Path, err))
				}
				return nil
			}
			records[i] = recordForFile(root, item.Path, info)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filterValid(records), nil
}

// recordForFile names a local image: EXIF description or file name for the title,
// EXIF artist or the containing directory for the owner.
func recordForFile(root, path string, info *ImageInfo) ImageRecord {
	base := filepath.Base(path)
	title := info.Description
	if title == "" {
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ownerDir := filepath.Base(filepath.Dir(path))
	if filepath.Dir(path) == root {
		ownerDir = filepath.Base(root)
	}
	owner := info.Artist
	if owner == "" {
		owner = ownerDir
	}

	return ImageRecord{
		Title:        title,
		ThumbnailURL: path,
		FullURL:      path,
		Width:        info.Width,
		Height:       info.Height,
		OwnerTitle:   owner,
		OwnerSlug:    Slugify(owner),
	}
}

// Slugify lower-cases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
