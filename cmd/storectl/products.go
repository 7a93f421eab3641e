package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/browse"
	"storefront/internal/models"
	"storefront/internal/restclient"
)

func productFetcher(c *restclient.Client) browse.Fetcher[models.Product] {
	return func(ctx context.Context, q browse.Query) (browse.Result[models.Product], error) {
		page, err := c.ListProducts(ctx, restclient.ProductQuery{
			Search:   q.Search,
			Category: q.Category,
			Sort:     q.Sort,
			Page:     q.Page,
			PageSize: q.PageSize,
		})
		if err != nil {
			return browse.Result[models.Product]{}, err
		}
		return browse.Result[models.Product]{Items: page.Data, Total: page.Total, TotalPages: page.TotalPages}, nil
	}
}

func newProductsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Catálogo de productos",
	}

	var (
		search, category, sort string
		page                   int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista productos; búsqueda y orden quedan guardados en la sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := root.client()
			l := browse.NewListing(productFetcher(c), c.Prefs(), root.session, root.log("browse"))
			if err := l.Restore(ctx); err != nil {
				return err
			}

			var (
				res browse.Result[models.Product]
				err error
			)
			flags := cmd.Flags()
			switch {
			case flags.Changed("q") || flags.Changed("category"):
				q := l.Query()
				if !flags.Changed("q") {
					search = q.Search
				}
				if !flags.Changed("category") {
					category = q.Category
				}
				res, err = l.Search(ctx, search, category)
			default:
				res, err = l.Reload(ctx)
			}
			if err == nil && flags.Changed("sort") {
				res, err = l.SortBy(ctx, sort)
			}
			if err == nil && flags.Changed("page") {
				res, err = l.GoToPage(ctx, page)
			}
			if err != nil {
				return err
			}

			q := l.Query()
			printProducts(cmd.OutOrStdout(), res.Items)
			fmt.Fprintf(cmd.OutOrStdout(), "página %d de %d (%d productos) orden=%s\n", q.Page, res.TotalPages, res.Total, q.Sort)
			return nil
		},
	}
	list.Flags().StringVar(&search, "q", "", "texto a buscar")
	list.Flags().StringVar(&category, "category", "", "categoría")
	list.Flags().StringVar(&sort, "sort", "", "campo:dir, ej. price:asc")
	list.Flags().IntVar(&page, "page", 1, "página")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Muestra un producto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.client().GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), []models.Product{p})
			return nil
		},
	})

	return cmd
}

func printProducts(w io.Writer, items []models.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tNAME\tCATEGORY\tPRICE")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\n",
			p.ID.Hex(), p.SKU, p.Name, p.Category, p.BasePrice.StringFixed(2), strings.ToUpper(p.Currency))
	}
	_ = tw.Flush()
}
