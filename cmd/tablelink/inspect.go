package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	xlsxsource "github.com/ajitpratap0/tablelink/pkg/connector/sources/xlsx"
	"github.com/ajitpratap0/tablelink/pkg/link"
	"github.com/ajitpratap0/tablelink/pkg/logger"
)

func newColumnsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "Show a file's columns and first rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, skip, err := originFromFlags(c.v, args[0], "")
			if err != nil {
				return err
			}
			format, err := registry.FormatForPath(origin.Path)
			if err != nil {
				return err
			}

			formats := config.DefaultFormatConfig()
			formats.PreviewRows = c.v.GetInt("rows")
			formats.TrimHeaders = c.v.GetBool("trim-headers")
			if err := formats.Validate(); err != nil {
				return err
			}
			engine := link.NewEngine(link.WithLogger(logger.Get()), link.WithFormats(formats))

			ds, err := engine.Load(cmd.Context(), origin, skip, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s (%s)\n", origin.Path, format)
			if format == core.FormatXLSX {
				if sheets, err := xlsxsource.Sheets(origin.Path); err == nil {
					fmt.Fprintf(out, "Sheets: %s\n", strings.Join(sheets, ", "))
				}
			}
			fmt.Fprintf(out, "Columns (%d): %s\n\n", ds.Width(), strings.Join(ds.Columns, ", "))

			tw := newTable(out)
			fmt.Fprintln(tw, strings.Join(ds.Columns, "\t"))
			for _, rec := range ds.Strings() {
				fmt.Fprintln(tw, strings.Join(rec, "\t"))
			}
			return tw.Flush()
		},
	}
	originFlags(cmd, "")
	cmd.Flags().Int("rows", 5, "Number of rows to show")
	cmd.Flags().Bool("trim-headers", false, "Strip whitespace around column names")
	return cmd
}

func newKeysCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys <source> <destination>",
		Short: "List the column names both files share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := link.NewEngine(link.WithLogger(logger.Get()))

			var columns [2][]string
			for i, prefix := range []string{"source", "destination"} {
				origin, skip, err := originFromFlags(c.v, args[i], prefix)
				if err != nil {
					return err
				}
				ds, err := engine.Load(cmd.Context(), origin, skip, true)
				if err != nil {
					return err
				}
				columns[i] = ds.Columns
			}

			common, err := engine.CommonKeys(columns[0], columns[1])
			if err != nil {
				return err
			}
			for _, name := range common {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	originFlags(cmd, "source")
	originFlags(cmd, "destination")
	return cmd
}
