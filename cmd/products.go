package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/compumarket/catalogadmin/internal/catalog"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/spf13/cobra"
)

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Browse and manage catalog products",
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newFilterPriceCmd())
	cmd.AddCommand(newFilterStockCmd())
	cmd.AddCommand(newOffersCmd())
	cmd.AddCommand(newByCategoryCmd())
	cmd.AddCommand(newBySubcategoryCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newDescribeCmd())
	cmd.AddCommand(newImagesCmd())

	return cmd
}

// listCommand builds a read-only command that prints a product list
func listCommand(use, short string, args cobra.PositionalArgs, fetch func(ctx context.Context, c *catalog.Client, args []string) ([]models.Product, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			products, err := fetch(cmd.Context(), a.client, args)
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), opts.output, products)
		},
	}
}

func newListCmd() *cobra.Command {
	return listCommand("list", "List every product", cobra.NoArgs,
		func(ctx context.Context, c *catalog.Client, _ []string) ([]models.Product, error) {
			return c.Products(ctx)
		})
}

func newSearchCmd() *cobra.Command {
	return listCommand("search [term]", "Search products by name", cobra.MaximumNArgs(1),
		func(ctx context.Context, c *catalog.Client, args []string) ([]models.Product, error) {
			return c.Search(ctx, strings.Join(args, " "))
		})
}

func newFilterStockCmd() *cobra.Command {
	return listCommand("filter-stock <min-stock>", "List products with at least the given stock", cobra.ExactArgs(1),
		func(ctx context.Context, c *catalog.Client, args []string) ([]models.Product, error) {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid stock %q", args[0])
			}
			return c.FilterByStock(ctx, n)
		})
}

func newOffersCmd() *cobra.Command {
	return listCommand("offers", "List products on sale", cobra.NoArgs,
		func(ctx context.Context, c *catalog.Client, _ []string) ([]models.Product, error) {
			return c.Offers(ctx)
		})
}

func newByCategoryCmd() *cobra.Command {
	return listCommand("by-category <category-id>", "List the products of a category", cobra.ExactArgs(1),
		func(ctx context.Context, c *catalog.Client, args []string) ([]models.Product, error) {
			id, err := models.ParseID(args[0])
			if err != nil {
				return nil, err
			}
			return c.ProductsByCategory(ctx, id)
		})
}

func newBySubcategoryCmd() *cobra.Command {
	return listCommand("by-subcategory <subcategory-id>", "List the products of a subcategory", cobra.ExactArgs(1),
		func(ctx context.Context, c *catalog.Client, args []string) ([]models.Product, error) {
			id, err := models.ParseID(args[0])
			if err != nil {
				return nil, err
			}
			return c.ProductsBySubcategory(ctx, id)
		})
}

func newFilterPriceCmd() *cobra.Command {
	var minPrice, maxPrice float64

	cmd := &cobra.Command{
		Use:   "filter-price",
		Short: "List products within a price range",
		Example: `  catalogadmin products filter-price --min 100 --max 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			products, err := a.client.FilterByPrice(cmd.Context(), minPrice, maxPrice)
			if err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), opts.output, products)
		},
	}

	cmd.Flags().Float64Var(&minPrice, "min", catalog.DefaultMinPrice, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max", catalog.DefaultMaxPrice, "Maximum price")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
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
			return printProduct(cmd.OutOrStdout(), opts.output, *p)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more products",
		Long: `Deletes products by id. Without --yes the command asks for confirmation
on standard input.`,
		Example: `  catalogadmin products delete 12
  catalogadmin products delete 12 13 14 --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]models.FlexInt, 0, len(args))
			for _, arg := range args {
				id, err := models.ParseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			if !yes {
				fmt.Fprintf(cmd.ErrOrStderr(), "Delete %d product(s) %s? [y/N] ", len(ids), strings.Join(args, ", "))
				if !confirmed(bufio.NewReader(cmd.InOrStdin())) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			if len(ids) == 1 {
				err = a.client.DeleteProduct(cmd.Context(), ids[0])
			} else {
				err = a.client.DeleteProducts(cmd.Context(), ids, concurrency)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d product(s)\n", len(ids))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Parallel deletes when several ids are given")

	return cmd
}

func confirmed(r *bufio.Reader) bool {
	line, _ := r.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	default:
		return false
	}
}
