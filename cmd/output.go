package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/compumarket/catalogadmin/internal/export"
	"github.com/compumarket/catalogadmin/internal/models"
	"gopkg.in/yaml.v3"
)

// printProducts writes products in the selected --output format
func printProducts(w io.Writer, format string, products []models.Product) error {
	if format != "table" {
		return export.Write(w, format, products)
	}
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products match")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\tCONDITION\tOFFER\tSALE PRICE\tIMAGES")
	for _, p := range products {
		offer, sale := "-", "-"
		if p.OnSale {
			offer = strconv.FormatFloat(p.DiscountPercent, 'f', -1, 64) + "%"
			sale = fmt.Sprintf("%.2f", salePrice(p))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\t%s\t%s\t%d\n",
			p.ID, truncate(p.Name, 40), p.Price, p.Stock, p.Condition, offer, sale, len(p.Images))
	}
	return tw.Flush()
}

// printProduct writes a single product in detail
func printProduct(w io.Writer, format string, p models.Product) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		return writeJSON(w, p)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	fmt.Fprintf(tw, "Price:\t%.2f\n", p.Price)
	fmt.Fprintf(tw, "Stock:\t%d\n", p.Stock)
	fmt.Fprintf(tw, "Condition:\t%s\n", p.Condition)
	fmt.Fprintf(tw, "Audience:\t%s\n", p.Audience)
	fmt.Fprintf(tw, "Category:\t%s / %s\n", p.CategoryID, p.SubcategoryID)
	if p.OnSale {
		fmt.Fprintf(tw, "Offer:\t%s%% off\n", strconv.FormatFloat(p.DiscountPercent, 'f', -1, 64))
		fmt.Fprintf(tw, "Sale price:\t%.2f\n", salePrice(p))
	}
	for i, img := range p.Images {
		fmt.Fprintf(tw, "Image %d:\t%s\n", i+1, img)
	}
	return tw.Flush()
}

func printCategories(w io.Writer, format string, categories []models.Category) error {
	switch format {
	case "yaml":
		return yaml.NewEncoder(w).Encode(categories)
	case "json":
		return writeJSON(w, categories)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSUBCATEGORIES")
	for _, c := range categories {
		subs := make([]string, 0, len(c.Subcategories))
		for _, s := range c.Subcategories {
			subs = append(subs, fmt.Sprintf("%s (%s)", s.Name, s.ID))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, strings.Join(subs, ", "))
	}
	return tw.Flush()
}

// salePrice prefers the server's precio_final and falls back to applying the
// discount locally when the server did not send one.
func salePrice(p models.Product) float64 {
	if p.FinalPrice > 0 {
		return p.FinalPrice
	}
	return p.Price * (1 - p.DiscountPercent/100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
