package ioutils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService scales thumbnails into previews.
type ImageService struct {
	// Quality is the JPEG quality of produced previews.
	Quality int
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{Quality: 85}
}

// Thumbnail decodes data and scales it to fit within maxWidth x maxHeight,
// keeping the aspect ratio. Images already small enough are re-encoded at
// their original size. The result is JPEG.
//
// The Catmull-Rom kernel is used for scaling.
//
// Example:
//
//	// A 480x360 source becomes 120x90
//	preview, err := svc.Thumbnail(data, 160, 90)
func (s *ImageService) Thumbnail(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, errors.New("thumbnail bounds must be positive")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fit(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return max(width, 1), max(height, 1)
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		return max(int(float64(maxHeight)*ratio), 1), maxHeight
	}
	return maxWidth, max(int(float64(maxWidth)/ratio), 1)
}
