package preview

import (
	"bytes"
	"image/jpeg"
	"log/slog"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Scheme prefixes every handle handed out by a Pool.
const Scheme = "preview://"

// DefaultThumbnailSize bounds the longest edge of a generated preview.
const DefaultThumbnailSize = 320

// Pool hands out ephemeral preview handles for locally staged images.
// Every handle must be released exactly once.
type Pool struct {
	size    int
	mu      sync.Mutex
	entries map[string]Image
}

// Image is the displayable payload behind a handle.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewPool creates a pool whose thumbnails fit in a size x size box.
// A non-positive size keeps the original bytes.
func NewPool(size int) *Pool {
	return &Pool{
		size:    size,
		entries: make(map[string]Image),
	}
}

// Acquire registers a preview for the given image bytes and returns its handle.
func (p *Pool) Acquire(name string, data []byte) string {
	handle := Scheme + uuid.NewString()
	img := p.thumbnail(name, data)

	p.mu.Lock()
	p.entries[handle] = img
	p.mu.Unlock()

	slog.Debug("Preview acquired", "handle", handle, "name", name, "bytes", len(img.Data))
	return handle
}

// Release frees the preview behind handle. It reports false if the handle
// was unknown or already released.
func (p *Pool) Release(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[handle]; !ok {
		return false
	}
	delete(p.entries, handle)
	slog.Debug("Preview released", "handle", handle)
	return true
}

// Open returns the preview stored for handle.
func (p *Pool) Open(handle string) (Image, bool) {
	if !strings.HasPrefix(handle, Scheme) {
		handle = Scheme + handle
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.entries[handle]
	return img, ok
}

// Len returns the number of outstanding handles.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Pool) thumbnail(name string, data []byte) Image {
	raw := Image{Name: name, ContentType: "application/octet-stream", Data: data}
	if p.size <= 0 {
		return raw
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		// Not a decodable image; serve the bytes as they are.
		slog.Debug("Preview kept as raw bytes", "name", name, "err", err)
		return raw
	}

	thumb := imaging.Fit(src, p.size, p.size, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		slog.Warn("Unable to encode preview thumbnail", "name", name, "err", err)
		return raw
	}

	return Image{Name: name, ContentType: "image/jpeg", Data: buf.Bytes()}
}
