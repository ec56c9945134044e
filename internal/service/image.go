package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// ImageInfo holds metadata about an image file.
type ImageInfo struct {
	Width       int
	Height      int
	Size        int64
	Description string // EXIF ImageDescription
	Artist      string // EXIF Artist
}

// ImageService loads image bytes and metadata from local paths or URLs.
type ImageService struct {
	Client *http.Client
}

// NewImageService creates a new ImageService.
func NewImageService(client *http.Client) *ImageService {
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageService{Client: client}
}

// IsRemote reports whether src is an http(s) URL rather than a file path.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// GetImageInfo reads an image file and extracts metadata without decoding the full image.
func (is *ImageService) GetImageInfo(path string) (*ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("decoding image config: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file for exif: %w", err)
	}
	exifData, _ := exif.Decode(file) // EXIF might not be present

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("getting file stats: %w", err)
	}

	info := &ImageInfo{
		Width:  config.Width,
		Height: config.Height,
		Size:   fileInfo.Size(),
	}
	if exifData != nil {
		info.Description = exifString(exifData, exif.ImageDescription)
		info.Artist = exifString(exifData, exif.Artist)
	}
	return info, nil
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// GetEmbeddedThumbnail attempts to read an embedded EXIF thumbnail from an image file.
func (is *ImageService) GetEmbeddedThumbnail(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file for thumbnail: %w", err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return nil, errors.New("no EXIF data found")
	}

	thumbBytes, err := x.JpegThumbnail()
	if err != nil {
		return nil, fmt.Errorf("no JPEG thumbnail in EXIF: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(thumbBytes))
	return img, err
}

// Decode loads and decodes the image at src, a file path or an http(s) URL.
func (is *ImageService) Decode(src string) (image.Image, error) {
	var r io.ReadCloser
	if IsRemote(src) {
		res, err := is.Client.Get(src)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", src, err)
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("fetching %s: %s", src, res.Status)
		}
		r = res.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	return img, nil
}
