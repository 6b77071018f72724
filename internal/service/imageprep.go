package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxDimension bounds the larger side of images sent to the vision API.
const maxDimension = 512

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// ImageProcessingService prepares images for AI analysis: format detection,
// downscaling and canonical JPEG re-encoding into a data URI.
type ImageProcessingService struct {
	client *http.Client
}

// NewImageProcessingService creates a new ImageProcessingService instance
func NewImageProcessingService() *ImageProcessingService {
	return &ImageProcessingService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ProcessImageFromURL downloads an image and processes it for AI analysis.
func (s *ImageProcessingService) ProcessImageFromURL(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	return s.ProcessImageData(data)
}

// ProcessImageData converts raw image bytes into a self-describing
// "data:image/jpeg;base64," payload, downscaled so neither dimension
// exceeds maxDimension. The result is deterministic per input.
func (s *ImageProcessingService) ProcessImageData(data []byte) (string, error) {
	format := sniffImageFormat(data)
	if format == "" || !supportedFormats[format] {
		return "", ErrUnsupportedFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil || img == nil {
		return "", ErrDecodeFailed
	}

	img = resizeIfNeeded(img)

	encoded, err := encodeJPEG(img)
	if err != nil {
		return "", err
	}

	log.Printf("[ImageProcessing] Processed %s image, final size: %d bytes", format, len(encoded))

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded), nil
}

// sniffImageFormat identifies the encoding from magic bytes only; filenames
// and declared content types are not trusted.
func sniffImageFormat(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "gif"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "bmp"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	}
	return ""
}

// resizeIfNeeded scales the image down so the larger dimension equals
// maxDimension, preserving aspect ratio. Images already within bounds are
// returned unchanged.
func resizeIfNeeded(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return img
	}

	var scale float64
	if width > height {
		scale = float64(maxDimension) / float64(width)
	} else {
		scale = float64(maxDimension) / float64(height)
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// encodeJPEG re-encodes the image as JPEG, flattening any alpha channel onto
// a white background first.
func encodeJPEG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
