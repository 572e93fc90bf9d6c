package cmd

import (
	"fmt"

	"github.com/compumarket/catalogadmin/internal/images"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/spf13/cobra"
)

func newImagesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "images <id>",
		Short: "Download a product's stored images",
		Example: `  catalogadmin products images 12 --dir ./product-12`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseID(args[0])
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			p, err := a.client.Product(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(p.Images) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Product has no images")
				return nil
			}

			if dir == "" {
				dir = "product-" + id.String()
			}
			paths, err := images.NewFetcher().Download(cmd.Context(), p.Images, dir)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default product-<id>)")

	return cmd
}
