package service

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressImageIfNeeded(t *testing.T) {
	t.Run("within budget returned unchanged", func(t *testing.T) {
		svc := NewImageCompressionService(300)
		data := makeJPEG(t, 50, 50)
		require.Less(t, len(data), 300*1024)

		out, err := svc.CompressImageIfNeeded(data, "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})

	t.Run("oversized image shrunk under budget", func(t *testing.T) {
		svc := NewImageCompressionService(20)
		data := makeJPEG(t, 1500, 1500)
		require.Greater(t, len(data), 20*1024)

		out, err := svc.CompressImageIfNeeded(data, "image/jpeg")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(out), 20*1024)

		img, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.LessOrEqual(t, img.Bounds().Dx(), 1500)
	})

	t.Run("png input stays png", func(t *testing.T) {
		svc := NewImageCompressionService(40)
		data := makePNG(t, 800, 800)
		if len(data) <= 40*1024 {
			t.Skip("generated png already within budget")
		}

		out, err := svc.CompressImageIfNeeded(data, "image/png")
		require.NoError(t, err)

		_, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
	})

	t.Run("garbage input fails decode", func(t *testing.T) {
		svc := NewImageCompressionService(1)
		_, err := svc.CompressImageIfNeeded(bytes.Repeat([]byte("x"), 4096), "image/jpeg")
		assert.ErrorIs(t, err, ErrDecodeFailed)
	})

	t.Run("attempt ceiling still returns an encoding", func(t *testing.T) {
		// A budget no encoding can meet exercises the loop ceiling.
		svc := NewImageCompressionService(0)
		svc.maxSizeBytes = 10

		out, err := svc.CompressImageIfNeeded(makeJPEG(t, 400, 400), "image/jpeg")
		require.NoError(t, err)
		assert.Greater(t, len(out), 10)
	})
}

func TestFormatFromContentType(t *testing.T) {
	assert.Equal(t, "png", formatFromContentType("image/png"))
	assert.Equal(t, "gif", formatFromContentType("image/gif"))
	assert.Equal(t, "jpeg", formatFromContentType("image/jpeg"))
	assert.Equal(t, "jpeg", formatFromContentType(""))
	assert.Equal(t, "jpeg", formatFromContentType("application/octet-stream"))
}
