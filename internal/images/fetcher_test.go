package images

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakePNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 200)...)

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /uploads/{name}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("name") {
		case "tiny.png":
			_, _ = w.Write([]byte("x"))
		case "missing.png":
			http.NotFound(w, r)
		default:
			_, _ = w.Write(fakePNG)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newImageServer(t)
	f := NewFetcher()

	file, err := f.Fetch(context.Background(), srv.URL+"/uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", file.Name)
	assert.Equal(t, "image/png", file.ContentType)

	_, err = f.Fetch(context.Background(), srv.URL+"/uploads/tiny.png")
	assert.ErrorContains(t, err, "too small")

	_, err = f.Fetch(context.Background(), srv.URL+"/uploads/missing.png")
	assert.ErrorContains(t, err, "status 404")
}

func TestFetchAllKeepsOrder(t *testing.T) {
	srv := newImageServer(t)
	refs := []string{srv.URL + "/uploads/c.png", srv.URL + "/uploads/a.png", srv.URL + "/uploads/b.png"}

	files, err := NewFetcher().FetchAll(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "c.png", files[0].Name)
	assert.Equal(t, "b.png", files[2].Name)

	_, err = NewFetcher().FetchAll(context.Background(), append(refs, srv.URL+"/uploads/missing.png"))
	assert.Error(t, err)
}

func TestDownloadSkipsFailures(t *testing.T) {
	srv := newImageServer(t)
	dir := t.TempDir()

	paths, err := NewFetcher().Download(context.Background(), []string{
		srv.URL + "/uploads/a.png",
		srv.URL + "/uploads/missing.png",
	}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.png")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, fakePNG, data)

	_, err = NewFetcher().Download(context.Background(), []string{srv.URL + "/uploads/missing.png"}, dir)
	assert.Error(t, err)
}
