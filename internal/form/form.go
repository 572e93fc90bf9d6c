// Package form is the product form session: the typed product being edited,
// its image set, and the submit that turns both into one API request.
package form

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
)

// API is the part of the catalog client a form needs.
type API interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Product(ctx context.Context, id models.FlexInt) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product, snap imageset.Snapshot) (*models.Product, error)
	UpdateProduct(ctx context.Context, id models.FlexInt, p models.Product, snap imageset.Snapshot) (*models.Product, error)
}

// Form holds one create or edit session.
type Form struct {
	Product    models.Product
	Categories []models.Category
	Images     *imageset.Editor

	api       API
	id        models.FlexInt
	submitted bool
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Open starts a session. A zero id opens the create flow; otherwise the
// product is fetched and its stored images hydrate the editor.
func Open(ctx context.Context, api API, previews imageset.Previewer, id models.FlexInt) (*Form, error) {
	f := &Form{
		Product: models.NewProduct(),
		Images:  imageset.NewEditor(previews),
		api:     api,
		id:      id,
	}

	categories, err := api.Categories(ctx)
	if err != nil {
		// Categories only help validation; the form still works without them.
		slog.Warn("Unable to load categories", "err", err)
	}
	f.Categories = categories

	if id == 0 {
		f.Images.Hydrate(nil)
		return f, nil
	}

	existing, err := api.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Product = *existing
	f.Product.ID = id
	f.Images.Hydrate(existing.Images)

	slog.Debug("Form opened for edit", "id", id, "images", len(existing.Images))
	return f, nil
}

// ID returns the product id being edited, or 0 in the create flow.
func (f *Form) ID() models.FlexInt {
	return f.id
}

// Editing reports whether the form edits an existing product.
func (f *Form) Editing() bool {
	return f.id != 0
}

// Submitted reports whether Submit has succeeded.
func (f *Form) Submitted() bool {
	return f.submitted
}

// SetCategory selects a category and clears the subcategory, which belonged
// to the previous one.
func (f *Form) SetCategory(id models.FlexInt) {
	if f.Product.CategoryID == id {
		return
	}
	f.Product.CategoryID = id
	f.Product.SubcategoryID = 0
}

// Subcategories returns the choices for the selected category.
func (f *Form) Subcategories() []models.Subcategory {
	c, ok := models.FindCategory(f.Categories, f.Product.CategoryID)
	if !ok {
		return nil
	}
	return c.Subcategories
}

// Validate checks the product fields.
func (f *Form) Validate() error {
	p := f.Product
	fields := make(map[string]string)

	if strings.TrimSpace(p.Name) == "" {
		fields["nombre"] = "product name is required"
	}
	if p.Price < 0 {
		fields["precio"] = "price cannot be negative"
	}
	if p.Stock < 0 {
		fields["stock"] = "stock cannot be negative"
	}
	if !slices.Contains(models.Conditions, p.Condition) {
		fields["estado"] = fmt.Sprintf("must be one of %s", strings.Join(models.Conditions, ", "))
	}
	if !slices.Contains(models.Audiences, p.Audience) {
		fields["orientado_a"] = fmt.Sprintf("must be one of %s", strings.Join(models.Audiences, ", "))
	}
	if p.OnSale && (p.DiscountPercent <= 0 || p.DiscountPercent > 100) {
		fields["porcentaje_descuento"] = "discount must be between 0 and 100 for products on sale"
	}
	if len(f.Categories) > 0 && p.CategoryID != 0 {
		c, ok := models.FindCategory(f.Categories, p.CategoryID)
		switch {
		case !ok:
			fields["categoria_id"] = "unknown category"
		case p.SubcategoryID != 0 && !c.HasSubcategory(p.SubcategoryID):
			fields["subcategoria_id"] = "subcategory does not belong to the selected category"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Submit validates the form and sends it. The image set is left untouched so
// a failed submit can be retried.
func (f *Form) Submit(ctx context.Context) (*models.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p := f.Product
	p.Name = strings.TrimSpace(p.Name)
	snap := f.Images.Snapshot()

	var (
		saved *models.Product
		err   error
	)
	if f.Editing() {
		saved, err = f.api.UpdateProduct(ctx, f.id, p, snap)
	} else {
		saved, err = f.api.CreateProduct(ctx, p, snap)
	}
	if err != nil {
		return nil, err
	}

	f.submitted = true
	return saved, nil
}

// Close ends the session and releases every image preview.
func (f *Form) Close() {
	f.Images.Close()
}
