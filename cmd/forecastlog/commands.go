package main

import (
	"errors"
	"fmt"
	"os"

	"forecastlog/pkg/config"
	"forecastlog/pkg/dashboard"
	"forecastlog/pkg/export"
	"forecastlog/pkg/form"
	"forecastlog/pkg/record"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (c *cli) tabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List project tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store(cmd)
			if err != nil {
				return err
			}
			tabs, err := st.ListPartitions(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tabs {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func (c *cli) appendCmd() *cobra.Command {
	var (
		tab, newTab string
		in          form.Input
	)
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append one entry to a project tab",
		Long: `Append one entry to a project tab.

Use --tab to write to an existing tab or --new-tab to create one.
The expected install date defaults to today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store(cmd)
			if err != nil {
				return err
			}

			var sel form.Selection
			if newTab != "" {
				sel = form.NewSelector(nil, form.ModeNew).Create(newTab)
			} else {
				tabs, err := st.ListPartitions(cmd.Context())
				if err != nil {
					return err
				}
				s := form.NewSelector(tabs, form.ModeExisting)
				if s.Forced {
					return errors.New("there are no project tabs yet; use --new-tab")
				}
				sel = s.Choose(tab)
			}

			rec, errs := form.Validate(sel, in)
			if errs != nil {
				return errs
			}
			if err := st.AppendRecord(cmd.Context(), rec); err != nil {
				return err
			}
			log.WithField("tab", rec.ProjectTab).Debug("entry appended")
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to project tab %q.\n", rec.ProjectTab)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&tab, "tab", "", "existing project tab")
	f.StringVar(&newTab, "new-tab", "", "create and write to a new project tab")
	f.StringVar(&in.ProjectName, "project", "", "project name")
	f.StringVar(&in.LotNumber, "lot", "", "lot number")
	f.StringVar(&in.ExpectedInstallDate, "date", "", "expected install date, YYYY-MM-DD")
	f.StringVar(&in.StatusUpdate, "status", "", "recent job status update")
	cmd.MarkFlagsMutuallyExclusive("tab", "new-tab")
	return cmd
}

type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", string(export.FormatCSV), "output format: csv or xlsx")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (default stdout for csv)")
}

// write sends t to the output file, or stdout. XLSX never goes to a
// terminal; without --out it is written to <base>.xlsx.
func (o *outputFlags) write(cmd *cobra.Command, t record.Table, base string) error {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	path := o.out
	if path == "" && format == export.FormatXLSX {
		path = export.FileName(base, format)
	}
	if path == "" {
		return export.Write(cmd.OutOrStdout(), t, format, base)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, t, format, base); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", t.Len(), path)
	return nil
}

func (c *cli) recordsCmd() *cobra.Command {
	var (
		tab string
		out outputFlags
	)
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Export the rows of a project tab",
		Long: `Export the rows of a project tab.

Without --tab, the single-sheet log is exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store(cmd)
			if err != nil {
				return err
			}
			var (
				t    record.Table
				base = legacyFileBase
			)
			if tab == "" {
				t, err = st.FetchRecords(cmd.Context())
			} else {
				t, err = st.FetchPartitionRecords(cmd.Context(), tab)
				base = tab
			}
			if err != nil {
				return err
			}
			return out.write(cmd, t, base)
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "project tab")
	out.register(cmd)
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	var (
		refresh bool
		out     outputFlags
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Export the dashboard aggregate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store(cmd)
			if err != nil {
				return err
			}
			agg := dashboard.New(st)
			if refresh {
				if err := agg.Refresh(cmd.Context()); err != nil {
					return err
				}
			}
			view, err := agg.Load(cmd.Context())
			if err != nil {
				return err
			}
			return out.write(cmd, view.Table, dashboardBase)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild the dashboard before exporting")
	out.register(cmd)
	return cmd
}

func (c *cli) initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "init-config [path]",
		Short:       "Write a starter config file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"config": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultPath
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
