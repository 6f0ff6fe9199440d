package main

import (
	"forecastlog/pkg/api"
	"forecastlog/pkg/config"
	"forecastlog/pkg/store"

	"github.com/spf13/cobra"
)

const (
	legacyFileBase = "forecast_log"
	dashboardBase  = "dashboard"
)

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "forecastlog",
		Short:         "Garage door forecast log from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["config"] == "none" {
				return nil
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return cfg.Log.ApplyLogging(c.verbose)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		c.tabsCmd(),
		c.appendCmd(),
		c.recordsCmd(),
		c.dashboardCmd(),
		c.initConfigCmd(),
	)
	return root
}

func (c *cli) store(cmd *cobra.Command) (store.RecordStore, error) {
	return api.NewStore(cmd.Context(), c.cfg)
}
