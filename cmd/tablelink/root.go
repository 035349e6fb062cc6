package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	"github.com/ajitpratap0/tablelink/pkg/logger"
	"github.com/ajitpratap0/tablelink/pkg/metrics"
	"github.com/ajitpratap0/tablelink/pkg/observability"

	// Import all available connectors to register them
	_ "github.com/ajitpratap0/tablelink/pkg/connector/destinations"
	_ "github.com/ajitpratap0/tablelink/pkg/connector/sources"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// TABLELINK_LOG_LEVEL or TABLELINK_SKIP_SOURCE.
const EnvPrefix = "TABLELINK"

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	v             *viper.Viper
	metricsServer *http.Server
	tracing       bool
}

// execute runs one invocation with args, writing command output to out.
func execute(args []string, out io.Writer) error {
	c := &cli{v: newViper()}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)

	err := root.Execute()
	if terr := c.teardown(); terr != nil {
		return errors.Join(err, terr)
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tablelink",
		Short: "Link columns from one table into another",
		Long: `tablelink copies selected columns from a source table into a destination
table by matching rows on a key column. Every destination row is kept;
rows without a match get empty cells.

CSV (.csv, .tsv, .txt, optionally .gz/.zst/.lz4 compressed) and Excel
(.xlsx, .xlsm) files are supported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return c.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log encoding (console, json)")
	flags.Bool("trace", false, "Print OpenTelemetry spans to stderr")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :9090")

	root.AddCommand(
		newVersionCmd(),
		newFormatsCmd(),
		newColumnsCmd(c),
		newKeysCmd(c),
		newLinkCmd(c),
	)
	return root
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// setup installs logging, tracing and the metrics endpoint.
func (c *cli) setup() error {
	if err := logger.Init(logger.Config{
		Level:       c.v.GetString("log-level"),
		Encoding:    c.v.GetString("log-format"),
		OutputPaths: []string{"stderr"},
	}); err != nil {
		return err
	}

	if c.v.GetBool("trace") {
		cfg := observability.DefaultTracingConfig()
		cfg.Enabled = true
		cfg.ServiceVersion = version
		cfg.Writer = os.Stderr
		if err := observability.InitTracing(cfg); err != nil {
			return err
		}
		c.tracing = true
	}

	if addr := c.v.GetString("metrics-addr"); addr != "" {
		c.serveMetrics(addr)
	}
	return nil
}

func (c *cli) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	c.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := c.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

func (c *cli) teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if c.metricsServer != nil {
		errs = append(errs, c.metricsServer.Shutdown(ctx))
		c.metricsServer = nil
	}
	if c.tracing {
		errs = append(errs, observability.Shutdown(ctx))
		c.tracing = false
	}
	_ = logger.Sync()
	return errors.Join(errs...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tablelink v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported file formats",
		Run: func(cmd *cobra.Command, args []string) {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TYPE\tFORMAT\tEXTENSIONS\tDESCRIPTION")
			for _, info := range registry.ListConnectorInfo() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					info.Type, info.Name, strings.Join(info.Extensions, " "), info.Description)
			}
			_ = tw.Flush()

			fmt.Fprintf(cmd.OutOrStdout(), "\nReads: %s\nWrites: %s\n",
				strings.Join(registry.ListSources(), ", "),
				strings.Join(registry.ListDestinations(), ", "))
		},
	}
}
