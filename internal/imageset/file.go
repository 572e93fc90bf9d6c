package imageset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the advisory per-image size ceiling.
const MaxFileSize = 5 << 20

// AcceptedTypes lists the advisory image content types.
var AcceptedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// File is a local binary staged for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFile wraps data as a staged file, sniffing its content type.
func NewFile(name string, data []byte) File {
	return File{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// ReadFile loads a staged file from disk.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return NewFile(filepath.Base(path), data), nil
}

// Advisory returns a human readable warning when the file falls outside the
// accepted types or size ceiling. It never rejects the file.
func (f File) Advisory() string {
	if len(f.Data) > MaxFileSize {
		return fmt.Sprintf("%s is %d bytes, larger than the %d byte limit", f.Name, len(f.Data), MaxFileSize)
	}
	mt := mimetype.Lookup(f.ContentType)
	for _, accepted := range AcceptedTypes {
		if f.ContentType == accepted || (mt != nil && mt.Is(accepted)) {
			return ""
		}
	}
	return fmt.Sprintf("%s has unsupported type %q (JPG, PNG or WEBP expected)", f.Name, f.ContentType)
}
