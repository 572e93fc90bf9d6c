package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/compumarket/catalogadmin/internal/catalog"
	"github.com/compumarket/catalogadmin/internal/config"
	"github.com/compumarket/catalogadmin/internal/credentials"
	"github.com/compumarket/catalogadmin/internal/preview"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	verbose bool
	output  string
	apiURL  string
}

var opts rootOptions

// app is the wiring every catalog command runs against
type app struct {
	cfg      *config.Config
	holder   *credentials.Holder
	client   *catalog.Client
	previews *preview.Pool
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogadmin",
		Short: "Administrative console for the product catalog",
		Long: `catalogadmin manages the product catalog through its REST API.

Log in once, then list, search and filter products, create and edit them
with their images, or open the local web console with "catalogadmin serve".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			switch opts.output {
			case "table", "yaml", "json":
				return nil
			default:
				return fmt.Errorf("unsupported --output %q (table, yaml or json)", opts.output)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, yaml or json")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Catalog API base URL (overrides CATALOG_API_URL)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newProductsCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// loadApp reads the configuration and restores the saved credential
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}

	holder := credentials.NewHolder(credentials.NewFileStore(cfg.CredentialsFile))
	if err := holder.Restore(); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		holder:   holder,
		client:   catalog.NewClient(holder, cfg.ClientOptions()),
		previews: preview.NewPool(preview.DefaultThumbnailSize),
	}, nil
}
