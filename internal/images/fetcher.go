package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/compumarket/catalogadmin/internal/imageset"
	"golang.org/x/sync/errgroup"
)

// minImageSize rejects empty bodies and tiny placeholder responses
const minImageSize = 100

// Fetcher retrieves a product's stored images from the catalog's file host
type Fetcher struct {
	HTTPClient  *http.Client
	Concurrency int
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Concurrency: 4,
	}
}

// Fetch downloads one stored image into memory
func (f *Fetcher) Fetch(ctx context.Context, ref string) (imageset.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return imageset.File{}, fmt.Errorf("invalid image URL %q: %w", ref, err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return imageset.File{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return imageset.File{}, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4*imageset.MaxFileSize))
	if err != nil {
		return imageset.File{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) < minImageSize {
		return imageset.File{}, fmt.Errorf("image too small (likely placeholder), size: %d bytes", len(data))
	}

	return imageset.NewFile(imageset.RemoteName(ref), data), nil
}

// FetchAll downloads every ref, keeping their order. It fails on the first
// image that cannot be fetched.
func (f *Fetcher) FetchAll(ctx context.Context, refs []string) ([]imageset.File, error) {
	files := make([]imageset.File, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.Concurrency, 1))
	for i, ref := range refs {
		g.Go(func() error {
			file, err := f.Fetch(ctx, ref)
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Download saves every ref under outputDir and returns the written paths.
// Images that fail are logged and skipped.
func (f *Fetcher) Download(ctx context.Context, refs []string, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outputDir, err)
	}

	var (
		mu    sync.Mutex
		paths = make([]string, 0, len(refs))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.Concurrency, 1))
	for _, ref := range refs {
		g.Go(func() error {
			file, err := f.Fetch(ctx, ref)
			if err != nil {
				slog.Warn("Failed to download image", "url", ref, "error", err)
				return nil
			}

			path := filepath.Join(outputDir, file.Name)
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write image file: %w", err)
			}
			slog.Debug("Downloaded image", "url", ref, "path", path, "type", file.ContentType)

			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return paths, err
	}

	if len(paths) == 0 && len(refs) > 0 {
		return nil, fmt.Errorf("no images could be downloaded")
	}
	return paths, nil
}
