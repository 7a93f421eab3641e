package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/restclient"
)

type rootOptions struct {
	api      string
	session  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	cfg := config.LoadConfig()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "storectl",
		Short:         "Cliente de la API de storefront",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Options{
				Level:  opts.logLevel,
				Format: "console",
				Output: "stderr",
			}, cfg.Env)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.api, "api", cfg.APIBaseURL, "URL base de la API")
	cmd.PersistentFlags().StringVar(&opts.session, "session", "cli", "id de sesión para las preferencias")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "nivel de log (debug, info, warn, error)")

	cmd.AddCommand(
		newAddressesCmd(opts),
		newProductsCmd(opts),
		newPriceRangeCmd(opts),
		newQuoteCmd(opts),
	)
	return cmd
}

func (o *rootOptions) client() *restclient.Client {
	return restclient.New(o.api, restclient.WithLogger(logger.Named("restclient")))
}

func (o *rootOptions) log(name string) *zap.Logger {
	return logger.Named(name)
}
