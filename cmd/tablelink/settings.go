package main

import (
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// originKeys are the flag and viper key names of one file's reader settings.
type originKeys struct {
	skip, sheet, encoding, delimiter string
}

// keysFor names the reader settings of a file. The link and keys commands
// use the "source" and "destination" prefixes; columns uses none.
func keysFor(prefix string) originKeys {
	if prefix == "" {
		return originKeys{skip: "skip", sheet: "sheet", encoding: "encoding", delimiter: "delimiter"}
	}
	return originKeys{
		skip:      "skip-" + prefix,
		sheet:     prefix + "-sheet",
		encoding:  prefix + "-encoding",
		delimiter: prefix + "-delimiter",
	}
}

// originFlags registers the reader flags of one file.
func originFlags(cmd *cobra.Command, prefix string) {
	k := keysFor(prefix)
	what := "the file"
	if prefix != "" {
		what = "the " + prefix
	}
	cmd.Flags().String(k.skip, "0", "Rows to skip before the header of "+what)
	cmd.Flags().String(k.sheet, "", "Sheet of "+what+" when it is a workbook (default: first sheet)")
	cmd.Flags().String(k.encoding, "", "Text encoding of "+what+" when it is CSV (default: utf-8)")
	cmd.Flags().String(k.delimiter, "", "Field delimiter of "+what+" when it is CSV (default: by extension)")
}

// applyOrigin overrides o with the flags or environment values that are set.
// Skip counts arrive as text; a malformed one is a read error.
func applyOrigin(v *viper.Viper, prefix string, o *config.OriginConfig) error {
	k := keysFor(prefix)
	if v.IsSet(k.skip) {
		n, err := tabular.ParseSkipRows(v.GetString(k.skip))
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeSourceRead, "invalid --"+k.skip)
		}
		o.Skip = n
	}
	if v.IsSet(k.sheet) {
		o.Sheet = v.GetString(k.sheet)
	}
	if v.IsSet(k.encoding) {
		o.Encoding = v.GetString(k.encoding)
	}
	if v.IsSet(k.delimiter) {
		o.Delimiter = v.GetString(k.delimiter)
	}
	return nil
}

// buildLinkConfig layers the optional --config file, then environment
// variables and flags, over the defaults. Positional arguments name the
// source and destination files.
func buildLinkConfig(v *viper.Viper, args []string) (*config.LinkConfig, error) {
	cfg := config.NewLinkConfig()
	if path := v.GetString("config"); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "cannot load "+path)
		}
	}

	if len(args) > 0 {
		cfg.Source.Path = args[0]
	}
	if len(args) > 1 {
		cfg.Destination.Path = args[1]
	}
	if err := applyOrigin(v, "source", &cfg.Source); err != nil {
		return nil, err
	}
	if err := applyOrigin(v, "destination", &cfg.Destination); err != nil {
		return nil, err
	}

	switch {
	case v.IsSet("source-key") || v.IsSet("destination-key"):
		cfg.Key.Mode = config.KeyModeManual
		cfg.Key.Source = v.GetString("source-key")
		cfg.Key.Destination = v.GetString("destination-key")
	case v.IsSet("key"):
		cfg.Key.Mode = config.KeyModeAutomatic
		cfg.Key.Name = v.GetString("key")
	}

	if v.IsSet("columns") {
		cfg.Columns = splitList(v.GetStringSlice("columns"))
	}
	if v.IsSet("output") {
		cfg.Output = v.GetString("output")
	}
	if v.IsSet("trim-keys") {
		cfg.Match.TrimSpace = v.GetBool("trim-keys")
	}
	if v.IsSet("ignore-case") {
		cfg.Match.IgnoreCase = v.GetBool("ignore-case")
	}
	if v.IsSet("on-collision") {
		cfg.OnCollision = v.GetString("on-collision")
	}
	if v.IsSet("dry-run") {
		cfg.DryRun = v.GetBool("dry-run")
	}
	if v.IsSet("preview-rows") {
		cfg.Formats.PreviewRows = v.GetInt("preview-rows")
	}
	if v.IsSet("trim-headers") {
		cfg.Formats.TrimHeaders = v.GetBool("trim-headers")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid link configuration")
	}
	return cfg, nil
}

// splitList flattens comma separated entries, so both repeated flags and
// TABLELINK_COLUMNS="a,b" work.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// originFromFlags builds the origin used by the inspection commands.
func originFromFlags(v *viper.Viper, path, prefix string) (core.Origin, int, error) {
	o := config.OriginConfig{Path: path}
	if err := applyOrigin(v, prefix, &o); err != nil {
		return core.Origin{}, 0, err
	}
	origin := core.Origin{Path: o.Path, Sheet: o.Sheet, Encoding: o.Encoding}
	if o.Delimiter != "" {
		d, err := o.DelimiterRune()
		if err != nil {
			return core.Origin{}, 0, errors.Wrap(err, errors.ErrorTypeConfig, "invalid delimiter for "+path)
		}
		origin.Delimiter = d
	}
	if !tabular.KnownEncoding(o.Encoding) {
		return core.Origin{}, 0, errors.Newf(errors.ErrorTypeConfig, "text encoding %q is not supported", o.Encoding)
	}
	return origin, o.Skip, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
