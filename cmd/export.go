package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/compumarket/catalogadmin/internal/export"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var file string
	var offersOnly bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to a parquet, json or yaml file",
		Long: `Downloads every product and writes it to --file. The format follows the
file extension (.parquet, .json, .yaml or .yml).`,
		Example: `  catalogadmin products export --file catalog.parquet
  catalogadmin products export --file offers.json --offers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.FormatFromPath(file)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}

			var products []models.Product
			if offersOnly {
				products, err = a.client.Offers(cmd.Context())
			} else {
				products, err = a.client.Products(cmd.Context())
			}
			if err != nil {
				return err
			}

			out, err := os.Create(file)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", file, err)
			}
			defer out.Close()

			if err := export.Write(out, format, products); err != nil {
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", file, err)
			}

			slog.Info("Catalog exported", "file", file, "format", format, "products", len(products))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file")
	cmd.Flags().BoolVar(&offersOnly, "offers", false, "Only export products on sale")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
