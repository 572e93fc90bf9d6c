package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/compumarket/catalogadmin/internal/describe"
	"github.com/compumarket/catalogadmin/internal/form"
	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// productFlags are the form fields settable from the command line
type productFlags struct {
	name        string
	description string
	price       float64
	stock       int
	condition   string
	audience    string
	category    int
	subcategory int
	onSale      bool
	discount    float64

	addImages    []string
	removeImages []string
	draft        bool
	dryRun       bool
}

func (pf *productFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&pf.name, "name", "", "Product name")
	fs.StringVar(&pf.description, "description", "", "Product description")
	fs.Float64Var(&pf.price, "price", 0, "Price")
	fs.IntVar(&pf.stock, "stock", 0, "Units in stock")
	fs.StringVar(&pf.condition, "condition", models.ConditionNew, "Condition: Nuevo, Usado or Reacondicionado")
	fs.StringVar(&pf.audience, "audience", models.AudienceAdults, "Audience: Adultos, Niños or Unisex")
	fs.IntVar(&pf.category, "category", 0, "Category id")
	fs.IntVar(&pf.subcategory, "subcategory", 0, "Subcategory id")
	fs.BoolVar(&pf.onSale, "on-sale", false, "Mark the product as on sale")
	fs.Float64Var(&pf.discount, "discount", 0, "Discount percentage, required with --on-sale")
	fs.StringArrayVar(&pf.addImages, "add-image", nil, "Image file to upload (repeatable)")
	fs.StringArrayVar(&pf.removeImages, "remove-image", nil, "Stored image to delete, by file name or URL (repeatable)")
	fs.BoolVar(&pf.draft, "draft-description", false, "Draft the description from the added images with Gemini")
	fs.BoolVar(&pf.dryRun, "dry-run", false, "Validate and print the request without sending it")
}

// apply copies the flags the user set onto the form. In the create flow every
// flag applies, so unset ones fall back to their defaults.
func (pf *productFlags) apply(f *form.Form, changed func(name string) bool) {
	set := func(name string) bool { return !f.Editing() || changed(name) }
	p := &f.Product

	if set("name") {
		p.Name = pf.name
	}
	if set("description") {
		p.Description = pf.description
	}
	if set("price") {
		p.Price = pf.price
	}
	if set("stock") {
		p.Stock = pf.stock
	}
	if set("condition") {
		p.Condition = pf.condition
	}
	if set("audience") {
		p.Audience = pf.audience
	}
	if set("category") {
		f.SetCategory(models.FlexInt(pf.category))
	}
	if set("subcategory") {
		p.SubcategoryID = models.FlexInt(pf.subcategory)
	}
	if set("on-sale") {
		p.OnSale = pf.onSale
	}
	if set("discount") {
		p.DiscountPercent = pf.discount
	}
}

// stageImages applies --remove-image then --add-image to the form's image set
func (pf *productFlags) stageImages(f *form.Form) error {
	for _, ref := range pf.removeImages {
		name := imageset.RemoteName(ref)
		i := f.Images.IndexOf(name)
		if i < 0 {
			return fmt.Errorf("product has no stored image %q", name)
		}
		f.Images.RemoveAt(i)
	}

	files := make([]imageset.File, 0, len(pf.addImages))
	for _, path := range pf.addImages {
		file, err := imageset.ReadFile(path)
		if err != nil {
			return err
		}
		if warning := file.Advisory(); warning != "" {
			slog.Warn("Image may be rejected by the catalog", "warning", warning)
		}
		files = append(files, file)
	}
	f.Images.AddFiles(files...)
	return nil
}

func newCreateCmd() *cobra.Command {
	var pf productFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product with its images",
		Example: `  catalogadmin products create --name "Notebook X1" --price 899.99 --stock 3 \
    --category 2 --subcategory 7 --add-image front.jpg --add-image back.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductForm(cmd, 0, &pf)
		},
	}
	pf.register(cmd.Flags())

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var pf productFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product and its images",
		Long: `Updates only the fields whose flags are given. Stored images named by
--remove-image are deleted and files given with --add-image are uploaded, in
the same request.`,
		Example: `  catalogadmin products update 12 --price 749 --on-sale --discount 15
  catalogadmin products update 12 --remove-image old.jpg --add-image new.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseID(args[0])
			if err != nil {
				return err
			}
			return runProductForm(cmd, id, &pf)
		},
	}
	pf.register(cmd.Flags())

	return cmd
}

func runProductForm(cmd *cobra.Command, id models.FlexInt, pf *productFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if !pf.dryRun && !a.holder.Authenticated() {
		return fmt.Errorf("not logged in; run \"catalogadmin login\"")
	}

	ctx := cmd.Context()
	f, err := form.Open(ctx, a.client, a.previews, id)
	if err != nil {
		return err
	}
	defer f.Close()

	pf.apply(f, cmd.Flags().Changed)
	if err := pf.stageImages(f); err != nil {
		return err
	}

	if pf.draft {
		if err := draftDescription(ctx, f, describe.New(a.cfg.GeminiAPIKey, a.cfg.GeminiModel)); err != nil {
			return err
		}
	}

	if pf.dryRun {
		if err := f.Validate(); err != nil {
			return err
		}
		return printDryRun(cmd.OutOrStdout(), f)
	}

	saved, err := f.Submit(ctx)
	if err != nil {
		return err
	}

	verb := "Created"
	if f.Editing() {
		verb = "Updated"
	}
	slog.Info(verb+" product", "id", saved.ID, "name", saved.Name)
	return printProduct(cmd.OutOrStdout(), opts.output, *saved)
}

type drafter interface {
	Draft(ctx context.Context, name string, images []imageset.File) (string, error)
}

func draftDescription(ctx context.Context, f *form.Form, d drafter) error {
	uploads := f.Images.Snapshot().Uploads
	if len(uploads) == 0 {
		return fmt.Errorf("--draft-description needs at least one --add-image")
	}
	text, err := d.Draft(ctx, f.Product.Name, uploads)
	if err != nil {
		return err
	}
	f.Product.Description = text
	return nil
}

func printDryRun(w io.Writer, f *form.Form) error {
	snap := f.Images.Snapshot()

	method, path := "POST", "/admin/productos/con-imagenes"
	if f.Editing() {
		method, path = "PUT", "/admin/productos/"+f.ID().String()
	}
	fmt.Fprintf(w, "%s %s\n", method, path)
	for _, field := range f.Product.FormFields() {
		fmt.Fprintf(w, "  %s = %s\n", field.Name, field.Value)
	}
	for _, u := range snap.Uploads {
		fmt.Fprintf(w, "  upload %s (%s, %d bytes)\n", u.Name, u.ContentType, len(u.Data))
	}
	for _, d := range snap.Deletions {
		fmt.Fprintf(w, "  delete %s\n", d)
	}
	return nil
}
