package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/base"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/json"
	"github.com/ajitpratap0/tablelink/pkg/link"
	"github.com/ajitpratap0/tablelink/pkg/logger"
)

func newLinkCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <source> <destination>",
		Short: "Copy columns from the source into the destination",
		Long: `Copy the selected source columns into the destination, matching rows on a
key column. The result keeps every destination row in order; rows without a
matching source row get empty cells in the copied columns. When the source
has the same key more than once, the first row wins.

Without --key, the single column name shared by both files is used. Use
--source-key and --destination-key when the key columns are named differently;
the source key is renamed to the destination key in the result.

The output defaults to "<destination>_linked" with the destination's
extension (CSV files stay CSV, workbooks become .xlsx).`,
		Example: `  tablelink link orders.csv customers.xlsx --key id --columns total,status
  tablelink link crm.csv billing.csv --source-key cust_id --destination-key client_id --columns email
  tablelink link --config link.yaml --dry-run --report -`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLink(cmd, args)
		},
	}

	originFlags(cmd, "source")
	originFlags(cmd, "destination")

	f := cmd.Flags()
	f.String("config", "", "YAML file with link settings; flags override it")
	f.String("key", "", "Key column present in both files")
	f.String("source-key", "", "Key column of the source (manual key mode)")
	f.String("destination-key", "", "Key column of the destination (manual key mode)")
	f.StringSlice("columns", nil, "Source columns to copy, comma separated")
	f.StringP("output", "o", "", "Output file (default: <destination>_linked<ext>)")
	f.Bool("trim-keys", false, "Ignore surrounding whitespace when matching keys")
	f.Bool("ignore-case", false, "Ignore letter case when matching keys")
	f.String("on-collision", config.CollisionOverwrite, "When a copied column already exists in the destination: overwrite or reject")
	f.Bool("dry-run", false, "Link without writing the output file")
	f.Bool("trim-headers", false, "Strip whitespace around column names")
	f.String("report", "", `Write a JSON report to this file ("-" for stdout)`)
	f.String("save-config", "", "Write the resolved settings to this YAML file for use with --config")
	return cmd
}

func (c *cli) runLink(cmd *cobra.Command, args []string) error {
	cfg, err := buildLinkConfig(c.v, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	engine := link.NewEngine(
		link.WithLogger(logger.Get()),
		link.WithFormats(cfg.Formats),
	)

	if !strings.EqualFold(cfg.Key.Mode, config.KeyModeManual) && cfg.Key.Name == "" {
		key, err := detectKey(ctx, engine, cfg)
		if err != nil {
			return err
		}
		cfg.Key.Name = key
	}

	req, err := link.RequestFromConfig(cfg)
	if err != nil {
		return err
	}
	if path := c.v.GetString("save-config"); path != "" {
		if err := config.Save(path, cfg); err != nil {
			return errors.Wrap(err, errors.ErrorTypeWrite, "cannot save settings to "+path)
		}
		logger.Info("settings saved", zap.String("path", path))
	}
	res, err := engine.Link(ctx, req)
	if err != nil {
		return err
	}

	report := c.v.GetString("report")
	if report != "-" {
		printSummary(cmd.OutOrStdout(), res)
	}
	if report != "" {
		return writeReport(cmd.OutOrStdout(), report, res.Report(req))
	}
	return nil
}

// detectKey picks the key when none was given: the only column name both
// files share. Several shared names are reported so the user can choose.
func detectKey(ctx context.Context, engine *link.Engine, cfg *config.LinkConfig) (string, error) {
	if cfg.Source.Path == "" || cfg.Destination.Path == "" {
		return "", errors.New(errors.ErrorTypeSourceRead, "link needs a source and a destination file")
	}
	src, err := engine.Load(ctx, originOf(cfg.Source), cfg.Source.Skip, true)
	if err != nil {
		return "", err
	}
	dst, err := engine.Load(ctx, originOf(cfg.Destination), cfg.Destination.Skip, true)
	if err != nil {
		return "", err
	}

	common, err := engine.CommonKeys(src.Columns, dst.Columns)
	if err != nil {
		return "", err
	}
	if len(common) > 1 {
		return "", errors.Newf(errors.ErrorTypeMissingKeySelection,
			"both files share several columns; choose one with --key: %s", strings.Join(common, ", ")).
			WithDetail("common_keys", common)
	}

	logger.Info("using the only shared column as key", zap.String("key", common[0]))
	return common[0], nil
}

func originOf(o config.OriginConfig) core.Origin {
	origin := core.Origin{Path: o.Path, Sheet: o.Sheet, Encoding: o.Encoding}
	if o.Delimiter != "" {
		// validated by LinkConfig.Validate
		origin.Delimiter, _ = o.DelimiterRune()
	}
	return origin
}

func printSummary(out io.Writer, res *link.Result) {
	s := res.Stats
	fmt.Fprintf(out, "Linked %d rows on %q: %d matched, %d unmatched\n", s.Rows, res.Key, s.Matched, s.Unmatched)
	fmt.Fprintf(out, "Added columns: %s\n", strings.Join(res.Added, ", "))
	if s.Overwritten > 0 {
		fmt.Fprintf(out, "Replaced %d existing cells\n", s.Overwritten)
	}
	if s.DuplicateSourceKeys > 0 {
		fmt.Fprintf(out, "Ignored %d source rows with a repeated key\n", s.DuplicateSourceKeys)
	}
	if res.DryRun {
		fmt.Fprintln(out, "Dry run: no file was written")
		return
	}
	fmt.Fprintf(out, "Wrote %s\n", res.Output)
}

func writeReport(stdout io.Writer, path string, report link.Report) error {
	if path == "-" {
		return json.Encode(stdout, report, true)
	}
	return base.WriteFileAtomic(path, func(w io.Writer) error {
		return json.Encode(w, report, true)
	})
}
