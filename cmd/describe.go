package cmd

import (
	"fmt"

	"github.com/compumarket/catalogadmin/internal/describe"
	"github.com/compumarket/catalogadmin/internal/images"
	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var name string
	var productID string

	cmd := &cobra.Command{
		Use:   "describe [image]...",
		Short: "Draft a product description from photos with Gemini",
		Long: `Sends the photos to Gemini and prints a draft description. Photos are
local files, or the stored images of --product. Requires GEMINI_API_KEY;
GEMINI_MODEL selects the model.`,
		Example: `  catalogadmin products describe --name "Teclado mecánico" front.jpg side.jpg
  catalogadmin products describe --product 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (productID == "") == (len(args) == 0) {
				return fmt.Errorf("give either image files or --product")
			}

			a, err := loadApp()
			if err != nil {
				return err
			}

			var files []imageset.File
			if productID != "" {
				id, err := models.ParseID(productID)
				if err != nil {
					return err
				}
				p, err := a.client.Product(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(p.Images) == 0 {
					return fmt.Errorf("product %s has no images", id)
				}
				if name == "" {
					name = p.Name
				}
				if files, err = images.NewFetcher().FetchAll(cmd.Context(), p.Images); err != nil {
					return err
				}
			}
			for _, path := range args {
				f, err := imageset.ReadFile(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			text, err := describe.New(a.cfg.GeminiAPIKey, a.cfg.GeminiModel).Draft(cmd.Context(), name, files)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Product name to give the model as context")
	cmd.Flags().StringVar(&productID, "product", "", "Use the stored images of this product id")

	return cmd
}
