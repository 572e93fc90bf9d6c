package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compumarket/catalogadmin/internal/catalog"
	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/compumarket/catalogadmin/internal/preview"
	"github.com/compumarket/catalogadmin/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	product   *models.Product
	updateErr error
	snap      imageset.Snapshot
	saved     models.Product
}

func (f *fakeAPI) Categories(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Subcategories: []models.Subcategory{{ID: 10}}}}, nil
}

func (f *fakeAPI) Product(ctx context.Context, id models.FlexInt) (*models.Product, error) {
	if f.product == nil {
		return nil, &catalog.APIError{StatusCode: http.StatusNotFound}
	}
	p := *f.product
	return &p, nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	f.snap, f.saved = snap, p
	p.ID = 50
	return &p, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id models.FlexInt, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.snap, f.saved = snap, p
	return &p, nil
}

type console struct {
	t        *testing.T
	srv      *httptest.Server
	pool     *preview.Pool
	sessions *storage.SessionStore
}

func newConsole(t *testing.T, api *fakeAPI) *console {
	pool := preview.NewPool(0)
	sessions := storage.New()
	srv := httptest.NewServer(New(api, pool, sessions).Routes())
	t.Cleanup(srv.Close)
	return &console{t: t, srv: srv, pool: pool, sessions: sessions}
}

func (c *console) do(method, path string, body []byte, contentType string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.srv.URL+path, bytes.NewReader(body))
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(c.t, err)
	return resp, buf.Bytes()
}

func (c *console) open(productID int) SessionView {
	c.t.Helper()
	body, _ := json.Marshal(map[string]int{"product_id": productID})
	resp, data := c.do(http.MethodPost, "/api/sessions", body, "application/json")
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(data))

	var view SessionView
	require.NoError(c.t, json.Unmarshal(data, &view))
	return view
}

func (c *console) upload(sessionID string, names ...string) SessionView {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(c.t, err)
		_, err = part.Write([]byte("\xff\xd8\xff\xe0 fake jpeg " + name))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	resp, data := c.do(http.MethodPost, "/api/sessions/"+sessionID+"/images", body.Bytes(), mw.FormDataContentType())
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(data))

	var view SessionView
	require.NoError(c.t, json.Unmarshal(data, &view))
	return view
}

func TestEditSessionLifecycle(t *testing.T) {
	api := &fakeAPI{product: &models.Product{
		Name: "Monitor", Condition: models.ConditionNew, Audience: models.AudienceAdults,
		Images: []string{"https://cdn/u/a.jpg", "https://cdn/u/b.jpg"},
	}}
	c := newConsole(t, api)

	view := c.open(3)
	assert.True(t, view.Editing)
	require.Len(t, view.Images, 2)
	assert.Equal(t, imageset.Existing, view.Images[0].Kind)

	view = c.upload(view.ID, "n1.jpg", "n2.jpg")
	require.Len(t, view.Images, 4)
	assert.Equal(t, 2, c.pool.Len())
	assert.Contains(t, view.Images[2].PreviewURL, "/previews/")

	resp, data := c.do(http.MethodGet, view.Images[2].PreviewURL, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "n1.jpg")

	// Drop a.jpg, then n1.jpg (now at index 1).
	resp, _ = c.do(http.MethodDelete, "/api/sessions/"+view.ID+"/images/0", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, data = c.do(http.MethodDelete, "/api/sessions/"+view.ID+"/images/1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &view))
	require.Len(t, view.Removed, 1)
	assert.True(t, view.Removed[0].MarkedForDeletion)
	assert.Equal(t, 1, c.pool.Len())

	// Out of range index is a no-op.
	resp, _ = c.do(http.MethodDelete, "/api/sessions/"+view.ID+"/images/42", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = c.do(http.MethodPost, "/api/sessions/"+view.ID+"/submit", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, []string{"a.jpg"}, api.snap.Deletions)
	require.Len(t, api.snap.Uploads, 1)
	assert.Equal(t, "n2.jpg", api.snap.Uploads[0].Name)

	assert.Zero(t, c.sessions.Len())
	assert.Zero(t, c.pool.Len())
}

func TestCreateSessionValidation(t *testing.T) {
	c := newConsole(t, &fakeAPI{})
	view := c.open(0)
	assert.False(t, view.Editing)

	resp, data := c.do(http.MethodPost, "/api/sessions/"+view.ID+"/submit", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "nombre")

	fields, _ := json.Marshal(map[string]any{"nombre": "Mouse", "estado": "Usado", "orientado_a": "Unisex", "categoria_id": 1, "subcategoria_id": 10})
	resp, data = c.do(http.MethodPut, "/api/sessions/"+view.ID+"/product", fields, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "Mouse", view.Product.Name)
	assert.Equal(t, models.FlexInt(10), view.Product.SubcategoryID)

	resp, _ = c.do(http.MethodPost, "/api/sessions/"+view.ID+"/submit", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCancelReleasesPreviews(t *testing.T) {
	c := newConsole(t, &fakeAPI{})
	view := c.open(0)
	c.upload(view.ID, "a.jpg")
	require.Equal(t, 1, c.pool.Len())

	resp, _ := c.do(http.MethodDelete, "/api/sessions/"+view.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, c.pool.Len())

	resp, _ = c.do(http.MethodGet, "/api/sessions/"+view.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenUnknownProduct(t *testing.T) {
	c := newConsole(t, &fakeAPI{})
	body, _ := json.Marshal(map[string]int{"product_id": 404})
	resp, _ := c.do(http.MethodPost, "/api/sessions", body, "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitFailureKeepsSession(t *testing.T) {
	api := &fakeAPI{
		product:   &models.Product{Name: "Monitor", Condition: models.ConditionNew, Audience: models.AudienceAdults},
		updateErr: errors.Join(errors.New("save"), catalog.ErrNoResponse),
	}
	c := newConsole(t, api)
	view := c.open(3)

	resp, _ := c.do(http.MethodPost, "/api/sessions/"+view.ID+"/submit", nil, "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, 1, c.sessions.Len())

	resp, data := c.do(http.MethodGet, "/api/sessions", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []SessionView
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list, 1)
}

func TestUploadWithoutFiles(t *testing.T) {
	c := newConsole(t, &fakeAPI{})
	view := c.open(0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "x"))
	require.NoError(t, mw.Close())

	resp, _ := c.do(http.MethodPost, "/api/sessions/"+view.ID+"/images", body.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthcheck(t *testing.T) {
	c := newConsole(t, &fakeAPI{})
	resp, data := c.do(http.MethodGet, "/healthcheck", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(data))
}

func TestProductFieldsApplyOnlySentKeys(t *testing.T) {
	api := &fakeAPI{product: &models.Product{
		Name: "Monitor", Price: 100, Stock: 2, Condition: models.ConditionUsed, Audience: models.AudienceUnisex,
		CategoryID: 1, SubcategoryID: 10, Images: []string{"https://cdn/u/a.jpg"},
	}}
	c := newConsole(t, api)
	view := c.open(3)

	put := func(body string) (int, SessionView) {
		resp, data := c.do(http.MethodPut, "/api/sessions/"+view.ID+"/product", []byte(body), "application/json")
		var v SessionView
		if resp.StatusCode == http.StatusOK {
			require.NoError(t, json.Unmarshal(data, &v))
		}
		return resp.StatusCode, v
	}

	status, v := put(`{"precio":"80.5"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 80.5, v.Product.Price)
	assert.Equal(t, 2, v.Product.Stock)
	assert.Equal(t, models.ConditionUsed, v.Product.Condition)
	assert.Equal(t, "Monitor", v.Product.Name)
	assert.Equal(t, models.FlexInt(10), v.Product.SubcategoryID)
	assert.Equal(t, models.FlexInt(3), v.Product.ID)

	status, v = put(`{"categoria_id":2,"id":99,"imagenes":[]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.FlexInt(2), v.Product.CategoryID)
	assert.Zero(t, v.Product.SubcategoryID, "a new category clears the subcategory")
	assert.Equal(t, models.FlexInt(3), v.Product.ID)
	assert.Len(t, v.Images, 1)

	status, v = put(`{"categoria_id":1,"subcategoria_id":10}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.FlexInt(10), v.Product.SubcategoryID)

	status, _ = put(`{"precio":"cheap"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = put(`not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSubmittedSessionRefusesEdits(t *testing.T) {
	c := newConsole(t, &fakeAPI{})
	view := c.open(0)

	// Submit the form directly, leaving the session in the store the way a
	// request racing the submit handler would find it.
	session, ok := c.sessions.Get(view.ID)
	require.True(t, ok)
	session.Mu.Lock()
	session.Form.Product.Name = "Mouse"
	_, err := session.Form.Submit(context.Background())
	session.Mu.Unlock()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "late.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("\xff\xd8\xff\xe0 late"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, _ := c.do(http.MethodPost, "/api/sessions/"+view.ID+"/images", body.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Zero(t, c.pool.Len())

	resp, _ = c.do(http.MethodDelete, "/api/sessions/"+view.ID+"/images/0", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = c.do(http.MethodPut, "/api/sessions/"+view.ID+"/product", []byte(`{"nombre":"x"}`), "application/json")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = c.do(http.MethodPost, "/api/sessions/"+view.ID+"/submit", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
