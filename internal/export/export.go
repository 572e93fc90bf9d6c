package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Supported output formats
const (
	FormatYAML    = "yaml"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// ProductRow is the flat parquet schema of a product
type ProductRow struct {
	ID              int64    `parquet:"id"`
	Name            string   `parquet:"nombre"`
	Description     string   `parquet:"descripcion,optional"`
	Price           float64  `parquet:"precio"`
	Stock           int64    `parquet:"stock"`
	Condition       string   `parquet:"estado,dict"`
	Audience        string   `parquet:"orientado_a,dict"`
	CategoryID      int64    `parquet:"categoria_id"`
	SubcategoryID   int64    `parquet:"subcategoria_id"`
	OnSale          bool     `parquet:"en_oferta"`
	DiscountPercent float64  `parquet:"porcentaje_descuento"`
	FinalPrice      float64  `parquet:"precio_final,optional"`
	Images          []string `parquet:"imagenes,list"`
}

// Row flattens a product
func Row(p models.Product) ProductRow {
	return ProductRow{
		ID:              int64(p.ID),
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Stock:           int64(p.Stock),
		Condition:       p.Condition,
		Audience:        p.Audience,
		CategoryID:      int64(p.CategoryID),
		SubcategoryID:   int64(p.SubcategoryID),
		OnSale:          p.OnSale,
		DiscountPercent: p.DiscountPercent,
		FinalPrice:      p.FinalPrice,
		Images:          p.Images,
	}
}

// FormatFromPath guesses the format from a file extension
func FormatFromPath(path string) (string, error) {
	switch {
	case strings.HasSuffix(path, ".parquet"):
		return FormatParquet, nil
	case strings.HasSuffix(path, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export file %s (supported: .parquet, .json, .yaml)", path)
	}
}

// Write encodes products in the given format
func Write(w io.Writer, format string, products []models.Product) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(products); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(products); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatParquet:
		return writeParquet(w, products)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeParquet(w io.Writer, products []models.Product) error {
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, Row(p))
	}

	writer := parquet.NewGenericWriter[ProductRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
