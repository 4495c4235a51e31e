package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// jpegQuality is used for every re-encoded cover.
const jpegQuality = 90

// CoverOptions controls how downloaded cover art is prepared.
//
// MaxSize is the bounding box edge in pixels; zero keeps the original size.
// When neither a resize nor ToJPEG is requested the data is returned as is.
type CoverOptions struct {
	MaxSize int
	ToJPEG  bool
}

// ImageService prepares album cover art for the download folder and for
// embedding into tags.
//
// Album pages link covers as JPEG, PNG, GIF or WebP. Any of them can be
// resized and re-encoded as JPEG:
//
//	svc := NewImageService()
//	data, _ := client.DownloadBytes(ctx, album.ArtworkURL)
//	cover, _ := svc.PrepareCover(ctx, data, CoverOptions{MaxSize: 1000, ToJPEG: true})
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// PrepareCover applies opts to the image data.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte, opts CoverOptions) ([]byte, error) {
	switch {
	case opts.MaxSize > 0:
		return s.ResizeImage(ctx, data, opts.MaxSize, opts.MaxSize)
	case opts.ToJPEG:
		return s.ConvertToJPEG(ctx, data)
	default:
		return data, nil
	}
}

// ResizeImage scales an image to fit within maxWidth x maxHeight, keeping
// the aspect ratio, and returns it JPEG-encoded. Smaller images keep their
// size but are still re-encoded.
//
//	// A 1500x1000 cover becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, data, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(dst)
}

// ConvertToJPEG re-encodes an image as JPEG. JPEG input is re-encoded too.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// fitWithin returns the largest size with the ratio of width/height that
// fits inside maxWidth x maxHeight. Sizes already inside are unchanged.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
