package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
	"golang.org/x/sync/errgroup"
)

// CreateProduct creates a product together with its staged images
func (c *Client) CreateProduct(ctx context.Context, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	created, err := c.sendProduct(ctx, http.MethodPost, "/admin/productos/con-imagenes", p, snap)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	slog.Info("Product created", "id", created.ID, "name", p.Name, "images", len(snap.Uploads))
	return created, nil
}

// UpdateProduct replaces the product's fields, uploads the staged images and
// asks the catalog to delete the removed ones
func (c *Client) UpdateProduct(ctx context.Context, id models.FlexInt, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	updated, err := c.sendProduct(ctx, http.MethodPut, "/admin/productos/"+id.String(), p, snap)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	slog.Info("Product updated", "id", id, "uploads", len(snap.Uploads), "deletions", len(snap.Deletions))
	return updated, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id models.FlexInt) error {
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/admin/productos/" + id.String(),
		auth:   true,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	slog.Info("Product deleted", "id", id)
	return nil
}

// DeleteProducts removes several products with at most concurrency requests
// in flight. Every id is attempted; failures are joined into one error.
func (c *Client) DeleteProducts(ctx context.Context, ids []models.FlexInt, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	var eg errgroup.Group
	eg.SetLimit(concurrency)
	errs := make([]error, len(ids))
	for i, id := range ids {
		eg.Go(func() error {
			errs[i] = c.DeleteProduct(ctx, id)
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}

func (c *Client) sendProduct(ctx context.Context, method, path string, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	if !c.credentials.Authenticated() {
		return nil, ErrNotLoggedIn
	}

	var body bytes.Buffer
	contentType, err := WriteProductForm(&body, p, snap)
	if err != nil {
		return nil, err
	}

	// Some deployments answer with the product, others wrap it in
	// {"producto": ...} or only send {"message": ...}.
	var raw json.RawMessage
	err = c.do(ctx, request{
		method:      method,
		path:        path,
		body:        &body,
		contentType: contentType,
		auth:        true,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeSavedProduct(raw)
}

func decodeSavedProduct(raw json.RawMessage) (*models.Product, error) {
	saved := &models.Product{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return saved, nil
	}

	var wrapped struct {
		Producto *models.Product `json:"producto"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode saved product: %w", err)
	}
	if wrapped.Producto != nil {
		return wrapped.Producto, nil
	}

	if err := json.Unmarshal(raw, saved); err != nil {
		return nil, fmt.Errorf("failed to decode saved product: %w", err)
	}
	return saved, nil
}
