package service

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log"
	"strings"

	"golang.org/x/image/draw"
)

const (
	compressMaxAttempts  = 10
	compressStartQuality = 85
	compressQualityStep  = 5
	compressMinQuality   = 50
)

// ImageCompressionService shrinks uploaded images to fit a byte budget before
// they are persisted to object storage. The budget is soft: after the attempt
// ceiling the last (possibly oversized) encoding is returned.
type ImageCompressionService struct {
	maxSizeBytes int
}

// NewImageCompressionService creates a new ImageCompressionService instance
func NewImageCompressionService(maxSizeKB int) *ImageCompressionService {
	log.Printf("[ImageCompression] initialized with max size: %d KB", maxSizeKB)
	return &ImageCompressionService{maxSizeBytes: maxSizeKB * 1024}
}

// CompressImageIfNeeded returns the input unchanged when it is already within
// budget; otherwise it iteratively shrinks dimensions and quality until the
// encoding fits or the attempt ceiling is reached.
func (s *ImageCompressionService) CompressImageIfNeeded(data []byte, contentType string) ([]byte, error) {
	if len(data) <= s.maxSizeBytes {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil || img == nil {
		return nil, ErrDecodeFailed
	}

	format := formatFromContentType(contentType)

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	quality := compressStartQuality

	var encoded []byte
	for attempt := 0; attempt < compressMaxAttempts; attempt++ {
		resized := scaleTo(img, width, height)

		encoded, err = encodeWithQuality(resized, format, quality)
		if err != nil {
			return nil, err
		}

		log.Printf("[ImageCompression] attempt %d: %dx%d q=%d size=%d bytes",
			attempt+1, width, height, quality, len(encoded))

		if len(encoded) <= s.maxSizeBytes {
			log.Printf("[ImageCompression] compressed %d bytes to %d bytes (%dx%d)",
				len(data), len(encoded), width, height)
			return encoded, nil
		}

		width = int(float64(width) * 0.9)
		height = int(float64(height) * 0.9)
		if format == "jpeg" && quality > compressMinQuality {
			quality -= compressQualityStep
		}
	}

	log.Printf("[ImageCompression] could not fit %d byte budget after %d attempts, final size: %d bytes",
		s.maxSizeBytes, compressMaxAttempts, len(encoded))
	return encoded, nil
}

// formatFromContentType maps a declared content type to a target encoding,
// defaulting to jpeg when the type is unrecognized or absent.
func formatFromContentType(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	default:
		return "jpeg"
	}
}

func scaleTo(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if width == bounds.Dx() && height == bounds.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

func encodeWithQuality(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
