package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormFields(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		expected []FormField
	}{
		{
			name: "regular product omits discount",
			product: Product{
				Name: "Laptop HP Pavilion 15", Description: "16GB", Price: 899.99, Stock: 3,
				Condition: ConditionNew, Audience: AudienceUnisex, CategoryID: 1, SubcategoryID: 4,
				DiscountPercent: 10,
			},
			expected: []FormField{
				{"nombre", "Laptop HP Pavilion 15"},
				{"descripcion", "16GB"},
				{"precio", "899.99"},
				{"stock", "3"},
				{"estado", "Nuevo"},
				{"orientado_a", "Unisex"},
				{"categoria_id", "1"},
				{"subcategoria_id", "4"},
				{"en_oferta", "false"},
			},
		},
		{
			name:    "on sale includes discount",
			product: Product{Name: "Mouse", Price: 10, Condition: ConditionUsed, Audience: AudienceKids, OnSale: true, DiscountPercent: 15.5},
			expected: []FormField{
				{"nombre", "Mouse"},
				{"descripcion", ""},
				{"precio", "10"},
				{"stock", "0"},
				{"estado", "Usado"},
				{"orientado_a", "Niños"},
				{"categoria_id", ""},
				{"subcategoria_id", ""},
				{"en_oferta", "true"},
				{"porcentaje_descuento", "15.5"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.product.FormFields())
		})
	}
}

func TestProductDecodesLooseIDs(t *testing.T) {
	payload := `{"id": 7, "nombre": "Teclado", "precio": 25.5, "stock": 2,
		"categoria_id": "3", "subcategoria_id": null, "en_oferta": true,
		"imagenes": ["https://cdn/x/a.jpg"]}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(payload), &p))
	assert.Equal(t, FlexInt(7), p.ID)
	assert.Equal(t, FlexInt(3), p.CategoryID)
	assert.Equal(t, FlexInt(0), p.SubcategoryID)
	assert.Equal(t, []string{"https://cdn/x/a.jpg"}, p.Images)

	var bad Product
	assert.Error(t, json.Unmarshal([]byte(`{"categoria_id": "abc"}`), &bad))
}

func TestProductDecodesNumericStrings(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		price     float64
		stock     int
		discount  float64
		final     float64
		expectErr bool
	}{
		{
			name:     "strings",
			payload:  `{"id":"7","precio":"19.90","stock":"4","porcentaje_descuento":"10.00","precio_final":"17.91"}`,
			price:    19.90,
			stock:    4,
			discount: 10,
			final:    17.91,
		},
		{
			name:    "numbers",
			payload: `{"precio":25.5,"stock":2,"porcentaje_descuento":0}`,
			price:   25.5,
			stock:   2,
		},
		{
			name:    "empty and null",
			payload: `{"precio":"","stock":null,"porcentaje_descuento":" ","precio_final":null}`,
		},
		{
			name:      "not a number",
			payload:   `{"precio":"barato"}`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			err := json.Unmarshal([]byte(tt.payload), &p)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.price, p.Price, 1e-9)
			assert.Equal(t, tt.stock, p.Stock)
			assert.InDelta(t, tt.discount, p.DiscountPercent, 1e-9)
			assert.InDelta(t, tt.final, p.FinalPrice, 1e-9)
		})
	}
}

func TestProductDecodeKeepsAbsentFields(t *testing.T) {
	p := Product{Name: "Teclado", Price: 30, Stock: 5, Condition: ConditionUsed}
	require.NoError(t, json.Unmarshal([]byte(`{"precio":"28"}`), &p))

	assert.Equal(t, 28.0, p.Price)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, "Teclado", p.Name)
	assert.Equal(t, ConditionUsed, p.Condition)
}

func TestProductListDecodes(t *testing.T) {
	var products []Product
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"precio":"5"},{"id":"2","stock":"3"}]`), &products))
	require.Len(t, products, 2)
	assert.Equal(t, 5.0, products[0].Price)
	assert.Equal(t, FlexInt(2), products[1].ID)
	assert.Equal(t, 3, products[1].Stock)
}

func TestFindCategory(t *testing.T) {
	cats := []Category{
		{ID: 1, Name: "Computadoras", Subcategories: []Subcategory{{ID: 10, Name: "Laptops"}}},
		{ID: 2, Name: "Audio"},
	}

	c, ok := FindCategory(cats, 1)
	require.True(t, ok)
	assert.True(t, c.HasSubcategory(10))
	assert.False(t, c.HasSubcategory(11))

	_, ok = FindCategory(cats, 9)
	assert.False(t, ok)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, FlexInt(42), id)

	for _, bad := range []string{"", "0", "-3", "x"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
