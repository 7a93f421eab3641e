package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/staged"
)

func newAddressesCmd(root *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Direcciones de un usuario",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "id del usuario")
	_ = cmd.MarkPersistentFlagRequired("user")

	editor := func(cmd *cobra.Command) (*staged.Editor[models.Address], error) {
		e := staged.NewEditor[models.Address](
			root.client().Addresses(user),
			models.AddressTraits,
			staged.WithLogger(root.log("addresses").With(zap.String("user", user))),
		)
		if _, err := e.Load(cmd.Context()); err != nil {
			return nil, err
		}
		return e, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista las direcciones en orden",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := editor(cmd)
			if err != nil {
				return err
			}
			printAddresses(cmd.OutOrStdout(), e.Items())
			return nil
		},
	})

	var (
		add        models.Address
		addDefault bool
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Agrega una dirección al final",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stageAndCommit(cmd, editor, func(e *staged.Editor[models.Address]) error {
				item := add
				item.IsDefault = addDefault
				_, err := e.StageCreate(item)
				return err
			})
		},
	}
	addCmd.Flags().StringVar(&add.Name, "name", "", "nombre")
	addCmd.Flags().StringVar(&add.Line1, "line1", "", "calle y número")
	addCmd.Flags().StringVar(&add.Line2, "line2", "", "")
	addCmd.Flags().StringVar(&add.City, "city", "", "")
	addCmd.Flags().StringVar(&add.Region, "region", "", "")
	addCmd.Flags().StringVar(&add.PostalCode, "postal-code", "", "")
	addCmd.Flags().StringVar(&add.Country, "country", "", "")
	addCmd.Flags().StringVar(&add.Type, "type", models.AddressShipping, "shipping o billing")
	addCmd.Flags().BoolVar(&addDefault, "default", false, "dejarla como default")
	for _, f := range []string{"name", "line1", "city", "postal-code", "country"} {
		_ = addCmd.MarkFlagRequired(f)
	}
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "set-default <id>",
		Short: "Marca una dirección como default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stageAndCommit(cmd, editor, func(e *staged.Editor[models.Address]) error {
				return e.StageSetDefault(staged.ParseID(args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reorder <id>...",
		Short: "Reordena con todos los ids en el orden nuevo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stageAndCommit(cmd, editor, func(e *staged.Editor[models.Address]) error {
				order := make([]staged.ID, len(args))
				for i, a := range args {
					order[i] = staged.ParseID(a)
				}
				return e.StageReorder(order)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>...",
		Short: "Borra una o más direcciones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stageAndCommit(cmd, editor, func(e *staged.Editor[models.Address]) error {
				for _, a := range args {
					if err := e.StageDelete(staged.ParseID(a)); err != nil {
						return fmt.Errorf("%s: %w", a, err)
					}
				}
				return nil
			})
		},
	})

	return cmd
}

func stageAndCommit(
	cmd *cobra.Command,
	load func(*cobra.Command) (*staged.Editor[models.Address], error),
	stage func(*staged.Editor[models.Address]) error,
) error {
	e, err := load(cmd)
	if err != nil {
		return err
	}
	if err := stage(e); err != nil {
		return err
	}
	items, err := e.Commit(cmd.Context())
	var partial *staged.PartialCommitError
	if errors.As(err, &partial) {
		fmt.Fprintf(cmd.ErrOrStderr(), "commit incompleto: %d llamadas aplicadas (%v)\n", partial.Applied, partial.Completed)
	}
	if err != nil {
		return err
	}
	printAddresses(cmd.OutOrStdout(), items)
	return nil
}

func printAddresses(w io.Writer, items []models.Address) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tDEFAULT\tNAME\tADDRESS")
	for _, a := range items {
		def := ""
		if a.IsDefault {
			def = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s, %s %s, %s\n",
			a.SortOrder, a.ID.Hex(), def, a.Name, a.Line1, a.PostalCode, a.City, a.Country)
	}
	_ = tw.Flush()
}
