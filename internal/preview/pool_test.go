package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAcquireRelease(t *testing.T) {
	pool := NewPool(DefaultThumbnailSize)

	a := pool.Acquire("a.txt", []byte("not an image"))
	b := pool.Acquire("b.txt", []byte("not an image"))

	assert.True(t, strings.HasPrefix(a, Scheme))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, pool.Len())

	assert.True(t, pool.Release(a))
	assert.False(t, pool.Release(a), "second release must report false")
	assert.Equal(t, 1, pool.Len())

	_, ok := pool.Open(a)
	assert.False(t, ok)
}

func TestThumbnailFitsBox(t *testing.T) {
	pool := NewPool(64)
	handle := pool.Acquire("wide.png", pngBytes(t, 400, 200))

	img, ok := pool.Open(handle)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", img.ContentType)

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 32, decoded.Bounds().Dy())
}

func TestOpenAcceptsBareID(t *testing.T) {
	pool := NewPool(0)
	handle := pool.Acquire("raw.bin", []byte{1, 2, 3})

	img, ok := pool.Open(strings.TrimPrefix(handle, Scheme))
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, img.Data)
	assert.Equal(t, "raw.bin", img.Name)
}
