package describe

import (
	"context"
	"testing"

	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	assert.Contains(t, Prompt(" Laptop HP "), "Product name: Laptop HP")
	assert.Contains(t, Prompt(""), "(unnamed)")
}

func TestImageFormat(t *testing.T) {
	tests := []struct {
		contentType string
		format      string
		ok          bool
	}{
		{"image/jpeg", "jpeg", true},
		{"image/png", "png", true},
		{"image/webp", "webp", true},
		{"image/gif", "", false},
	}
	for _, tt := range tests {
		format, ok := imageFormat(tt.contentType)
		assert.Equal(t, tt.format, format)
		assert.Equal(t, tt.ok, ok)
	}
}

func TestDraftRequiresKeyAndImages(t *testing.T) {
	_, err := New("", "").Draft(context.Background(), "x", []imageset.File{{Name: "a.jpg"}})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = New("key", "").Draft(context.Background(), "x", nil)
	assert.ErrorContains(t, err, "at least one image")
}

func TestNewDefaultsModel(t *testing.T) {
	assert.Equal(t, DefaultModel, New("k", "").Model)
	assert.Equal(t, "gemini-2.0-flash", New("k", "gemini-2.0-flash").Model)
}
