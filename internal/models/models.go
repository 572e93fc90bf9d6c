package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product conditions accepted by the catalog.
const (
	ConditionNew         = "Nuevo"
	ConditionUsed        = "Usado"
	ConditionRefurbished = "Reacondicionado"
)

// Audiences a product can be aimed at.
const (
	AudienceAdults = "Adultos"
	AudienceKids   = "Niños"
	AudienceUnisex = "Unisex"
)

var (
	Conditions = []string{ConditionNew, ConditionUsed, ConditionRefurbished}
	Audiences  = []string{AudienceAdults, AudienceKids, AudienceUnisex}
)

// Product represents a catalog product as exchanged with the API
type Product struct {
	ID              FlexInt  `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string   `json:"nombre" yaml:"name"`
	Description     string   `json:"descripcion" yaml:"description"`
	Price           float64  `json:"precio" yaml:"price"`
	Stock           int      `json:"stock" yaml:"stock"`
	Condition       string   `json:"estado" yaml:"condition"`
	Audience        string   `json:"orientado_a" yaml:"audience"`
	CategoryID      FlexInt  `json:"categoria_id" yaml:"category_id"`
	SubcategoryID   FlexInt  `json:"subcategoria_id" yaml:"subcategory_id"`
	OnSale          bool     `json:"en_oferta" yaml:"on_sale"`
	DiscountPercent float64  `json:"porcentaje_descuento" yaml:"discount_percent"`
	FinalPrice      float64  `json:"precio_final,omitempty" yaml:"final_price,omitempty"` // Discounted price computed by the server, read only
	Images          []string `json:"imagenes,omitempty" yaml:"images,omitempty"` // Stored image URLs, read only
}

// UnmarshalJSON decodes a product, accepting numeric strings for the price,
// stock, discount and final price columns. Fields absent from data keep
// their current values.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		Price           FlexFloat `json:"precio"`
		Stock           FlexFloat `json:"stock"`
		DiscountPercent FlexFloat `json:"porcentaje_descuento"`
		FinalPrice      FlexFloat `json:"precio_final"`
	}{
		plain:           (*plain)(p),
		Price:           FlexFloat(p.Price),
		Stock:           FlexFloat(p.Stock),
		DiscountPercent: FlexFloat(p.DiscountPercent),
		FinalPrice:      FlexFloat(p.FinalPrice),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Price = float64(aux.Price)
	p.Stock = int(aux.Stock)
	p.DiscountPercent = float64(aux.DiscountPercent)
	p.FinalPrice = float64(aux.FinalPrice)
	return nil
}

// NewProduct returns the defaults of a blank product form
func NewProduct() Product {
	return Product{
		Condition: ConditionNew,
		Audience:  AudienceAdults,
	}
}

// FormField is one scalar name/value pair of a multipart product form
type FormField struct {
	Name  string
	Value string
}

// FormFields maps the product to the multipart fields the API expects.
// The discount is only sent for products on sale.
func (p Product) FormFields() []FormField {
	fields := []FormField{
		{"nombre", p.Name},
		{"descripcion", p.Description},
		{"precio", strconv.FormatFloat(p.Price, 'f', -1, 64)},
		{"stock", strconv.Itoa(p.Stock)},
		{"estado", p.Condition},
		{"orientado_a", p.Audience},
		{"categoria_id", p.CategoryID.String()},
		{"subcategoria_id", p.SubcategoryID.String()},
		{"en_oferta", strconv.FormatBool(p.OnSale)},
	}
	if p.OnSale {
		fields = append(fields, FormField{"porcentaje_descuento", strconv.FormatFloat(p.DiscountPercent, 'f', -1, 64)})
	}
	return fields
}

// Category groups subcategories
type Category struct {
	ID            FlexInt       `json:"id" yaml:"id"`
	Name          string        `json:"nombre" yaml:"name"`
	Subcategories []Subcategory `json:"subcategorias" yaml:"subcategories"`
}

// Subcategory belongs to a single category
type Subcategory struct {
	ID         FlexInt `json:"id" yaml:"id"`
	Name       string  `json:"nombre" yaml:"name"`
	CategoryID FlexInt `json:"categoria_id,omitempty" yaml:"category_id,omitempty"`
}

// HasSubcategory reports whether id is one of the category's subcategories
func (c Category) HasSubcategory(id FlexInt) bool {
	for _, sub := range c.Subcategories {
		if sub.ID == id {
			return true
		}
	}
	return false
}

// FindCategory looks up a category by id
func FindCategory(categories []Category, id FlexInt) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FlexInt is an integer id that the API sometimes encodes as a string
type FlexInt int

func (i FlexInt) String() string {
	if i == 0 {
		return ""
	}
	return strconv.Itoa(int(i))
}

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*i = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", string(data), err)
	}
	*i = FlexInt(n)
	return nil
}

// FlexFloat is a number that the API sometimes encodes as a string
type FlexFloat float64

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", string(data), err)
	}
	*f = FlexFloat(n)
	return nil
}

// ParseID parses a command-line product, category or subcategory id
func ParseID(s string) (FlexInt, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return FlexInt(n), nil
}
