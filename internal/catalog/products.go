package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/compumarket/catalogadmin/internal/models"
)

// Default bounds used by FilterByPrice when the caller leaves one open
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000000
)

// Categories returns every category with its subcategories. Results are
// cached for the client's cache TTL.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	if cached, ok := c.cache.Get(categoriesKey); ok {
		return cached.([]models.Category), nil
	}

	var categories []models.Category
	if err := c.get(ctx, "/categorias", nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	c.cache.SetDefault(categoriesKey, categories)
	return categories, nil
}

// InvalidateCategories drops the cached category list
func (c *Client) InvalidateCategories() {
	c.cache.Delete(categoriesKey)
}

// Products lists every product
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	return c.products(ctx, "/productos", nil)
}

// Product fetches a single product
func (c *Client) Product(ctx context.Context, id models.FlexInt) (*models.Product, error) {
	var p models.Product
	if err := c.get(ctx, "/productos/"+id.String(), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return &p, nil
}

// Search finds products matching term. A blank term lists every product.
func (c *Client) Search(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.Products(ctx)
	}
	return c.products(ctx, "/productos/buscar", url.Values{"term": {term}})
}

// FilterByPrice lists products priced within [min, max]
func (c *Client) FilterByPrice(ctx context.Context, min, max float64) ([]models.Product, error) {
	if min > max {
		return nil, fmt.Errorf("minimum price %v is above maximum %v", min, max)
	}
	return c.products(ctx, "/productos/filtrar/precio", url.Values{
		"min": {strconv.FormatFloat(min, 'f', -1, 64)},
		"max": {strconv.FormatFloat(max, 'f', -1, 64)},
	})
}

// FilterByStock lists products with at least minStock units
func (c *Client) FilterByStock(ctx context.Context, minStock int) ([]models.Product, error) {
	return c.products(ctx, "/productos/filtrar/stock", url.Values{"stock": {strconv.Itoa(minStock)}})
}

// Offers lists products currently on sale
func (c *Client) Offers(ctx context.Context) ([]models.Product, error) {
	return c.products(ctx, "/ofertas", nil)
}

// ProductsByCategory lists the products of a category
func (c *Client) ProductsByCategory(ctx context.Context, categoryID models.FlexInt) ([]models.Product, error) {
	return c.products(ctx, "/categorias/"+categoryID.String()+"/productos", nil)
}

// ProductsBySubcategory lists the products of a subcategory
func (c *Client) ProductsBySubcategory(ctx context.Context, subcategoryID models.FlexInt) ([]models.Product, error) {
	return c.products(ctx, "/subcategorias/"+subcategoryID.String()+"/solo-productos", nil)
}

func (c *Client) products(ctx context.Context, path string, query url.Values) ([]models.Product, error) {
	products := []models.Product{}
	if err := c.get(ctx, path, query, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return products, nil
}
