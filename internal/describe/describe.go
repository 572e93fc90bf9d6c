// Package describe drafts product descriptions from staged images with Gemini.
package describe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when GEMINI_MODEL is unset
const DefaultModel = "gemini-1.5-flash"

const promptTemplate = `You write product descriptions for an online computer and electronics store.
Describe the product shown in the attached photos in Spanish, in two or three short sentences.
Mention visible brand, model, condition and notable features. Do not invent specifications you cannot see.
Product name: %s`

// Drafter turns product photos into a draft description
type Drafter struct {
	APIKey      string
	Model       string
	Temperature float64
}

// New returns a drafter for the given API key and model
func New(apiKey, model string) *Drafter {
	if model == "" {
		model = DefaultModel
	}
	return &Drafter{APIKey: apiKey, Model: model, Temperature: 0.4}
}

// Prompt builds the text part sent with the images
func Prompt(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf(promptTemplate, name)
}

// Draft asks Gemini for a description of the product in images
func (d *Drafter) Draft(ctx context.Context, name string, images []imageset.File) (string, error) {
	if d.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if len(images) == 0 {
		return "", fmt.Errorf("at least one image is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(d.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(d.Model)
	model.SetTemperature(float32(d.Temperature))

	parts := []genai.Part{genai.Text(Prompt(name))}
	for _, img := range images {
		format, ok := imageFormat(img.ContentType)
		if !ok {
			slog.Warn("Skipping image Gemini cannot read", "name", img.Name, "type", img.ContentType)
			continue
		}
		parts = append(parts, genai.ImageData(format, img.Data))
	}
	if len(parts) == 1 {
		return "", fmt.Errorf("none of the images is a JPEG, PNG or WEBP")
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return strings.TrimSpace(string(txt)), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

// imageFormat maps a content type to the short format genai.ImageData expects
func imageFormat(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return "jpeg", true
	case "image/png":
		return "png", true
	case "image/webp":
		return "webp", true
	default:
		return "", false
	}
}
