package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/pricing"
	"storefront/internal/restclient"
)

func newPriceRangeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "price-range <product-id>",
		Short: "Precio mínimo y máximo entre todas las combinaciones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := root.client().PriceRange(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !r.HasRange {
				fmt.Fprintln(cmd.OutOrStdout(), r.Min.StringFixed(2))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", r.Min.StringFixed(2), r.Max.StringFixed(2))
			return nil
		},
	}
}

func newQuoteCmd(root *rootOptions) *cobra.Command {
	var (
		qty     int
		options map[string]string
	)
	cmd := &cobra.Command{
		Use:   "quote <product-id>",
		Short: "Cotiza un renglón: precio unitario y total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := root.client().Quote(cmd.Context(), []restclient.QuoteLine{{
				ProductID:       args[0],
				Quantity:        pricing.ClampQuantity(qty),
				SelectedOptions: pricing.ByName(options),
			}})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QTY\tUNIT\tTOTAL")
			for _, l := range q.Lines {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2))
			}
			fmt.Fprintf(tw, "\t\t%s\n", q.Subtotal.StringFixed(2))
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "cantidad (se acota a 1..999)")
	cmd.Flags().StringToStringVar(&options, "opt", nil, "opción=valor por nombre, ej. --opt Size=Large")
	return cmd
}
