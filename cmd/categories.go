package cmd

import (
	"github.com/spf13/cobra"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List categories and their subcategories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			categories, err := a.client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return printCategories(cmd.OutOrStdout(), opts.output, categories)
		},
	}
}
