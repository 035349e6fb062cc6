package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// Key modes accepted in KeyConfig.Mode.
const (
	KeyModeAutomatic = "automatic"
	KeyModeManual    = "manual"
)

// Collision policies accepted in LinkConfig.OnCollision.
const (
	CollisionOverwrite = "overwrite"
	CollisionReject    = "reject"
)

// LinkConfig is the file/flag representation of one link operation. It is
// converted into an immutable link.Request before the engine runs.
type LinkConfig struct {
	// Source is the file columns are copied from
	Source OriginConfig `yaml:"source" json:"source"`
	// Destination is the file being enriched
	Destination OriginConfig `yaml:"destination" json:"destination"`
	// Key selects how rows are matched
	Key KeyConfig `yaml:"key" json:"key"`
	// Columns lists the source columns to copy, in order
	Columns []string `yaml:"columns" json:"columns"`
	// Output is the result path; empty means the suggested name
	Output string `yaml:"output" json:"output"`
	// Match tunes key comparison
	Match MatchConfig `yaml:"match" json:"match"`
	// OnCollision is "overwrite" or "reject"
	OnCollision string `yaml:"on_collision" json:"on_collision"`
	// DryRun merges without writing the output
	DryRun bool `yaml:"dry_run" json:"dry_run"`

	Formats       FormatConfig        `yaml:"formats" json:"formats"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// OriginConfig locates one tabular file.
type OriginConfig struct {
	Path string `yaml:"path" json:"path"`
	// Skip is the number of leading rows discarded before the header
	Skip int `yaml:"skip" json:"skip"`
	// Sheet names the workbook sheet; empty means the first one
	Sheet string `yaml:"sheet" json:"sheet"`
	// Encoding of CSV input; empty means UTF-8
	Encoding string `yaml:"encoding" json:"encoding"`
	// Delimiter of CSV input; empty means ","
	Delimiter string `yaml:"delimiter" json:"delimiter"`
}

// KeyConfig selects the join key.
type KeyConfig struct {
	Mode        string `yaml:"mode" json:"mode"`
	Name        string `yaml:"name" json:"name"`
	Source      string `yaml:"source" json:"source"`
	Destination string `yaml:"destination" json:"destination"`
}

// MatchConfig controls how key values are compared.
type MatchConfig struct {
	TrimSpace  bool `yaml:"trim_space" json:"trim_space"`
	IgnoreCase bool `yaml:"ignore_case" json:"ignore_case"`
}

// FormatConfig holds reader/writer settings shared by every file.
type FormatConfig struct {
	// TrimHeaders strips whitespace around header names
	TrimHeaders bool `yaml:"trim_headers" json:"trim_headers"`
	// PreviewRows is the number of rows loaded for previews
	PreviewRows int `yaml:"preview_rows" json:"preview_rows"`
	// CompressionLevel applies to compressed CSV output (1-9)
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
	// SheetName is the name of the sheet written to workbooks
	SheetName string `yaml:"sheet_name" json:"sheet_name"`
}

// ObservabilityConfig contains logging, tracing and metrics settings.
type ObservabilityConfig struct {
	LogLevel      string `yaml:"log_level" json:"log_level"`
	LogFormat     string `yaml:"log_format" json:"log_format"`
	EnableTracing bool   `yaml:"enable_tracing" json:"enable_tracing"`
	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090"
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

// NewLinkConfig returns a configuration with defaults applied.
func NewLinkConfig() *LinkConfig {
	return &LinkConfig{
		Key:         KeyConfig{Mode: KeyModeAutomatic},
		OnCollision: CollisionOverwrite,
		Formats:     DefaultFormatConfig(),
		Observability: ObservabilityConfig{
			LogLevel:  "warn",
			LogFormat: "console",
		},
	}
}

// DefaultFormatConfig returns the reader/writer defaults.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		PreviewRows:      tabular.DefaultPreviewRows,
		CompressionLevel: 5,
		SheetName:        "Sheet1",
	}
}

// Validate checks values that can be verified without touching any file.
// Missing paths, keys and columns are reported by the link engine, which
// owns that part of the error taxonomy.
func (c *LinkConfig) Validate() error {
	switch strings.ToLower(c.Key.Mode) {
	case "", KeyModeAutomatic, KeyModeManual:
	default:
		return fmt.Errorf("key.mode must be %q or %q, got %q", KeyModeAutomatic, KeyModeManual, c.Key.Mode)
	}
	switch strings.ToLower(c.OnCollision) {
	case "", CollisionOverwrite, CollisionReject:
	default:
		return fmt.Errorf("on_collision must be %q or %q, got %q", CollisionOverwrite, CollisionReject, c.OnCollision)
	}
	if err := c.Source.validate("source"); err != nil {
		return err
	}
	if err := c.Destination.validate("destination"); err != nil {
		return err
	}
	return c.Formats.Validate()
}

func (o *OriginConfig) validate(name string) error {
	if o.Skip < 0 {
		return fmt.Errorf("%s.skip cannot be negative", name)
	}
	if !tabular.KnownEncoding(o.Encoding) {
		return fmt.Errorf("%s.encoding %q is not supported", name, o.Encoding)
	}
	if o.Delimiter != "" {
		if _, err := o.DelimiterRune(); err != nil {
			return fmt.Errorf("%s.delimiter: %w", name, err)
		}
	}
	return nil
}

// DelimiterRune returns the configured delimiter, defaulting to ','.
// "\t" and "tab" both select a tab.
func (o *OriginConfig) DelimiterRune() (rune, error) {
	switch o.Delimiter {
	case "":
		return ',', nil
	case `\t`, "tab", "TAB":
		return '\t', nil
	}
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return 0, fmt.Errorf("must be a single character, got %q", o.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(o.Delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%q cannot be used as a delimiter", o.Delimiter)
	}
	return r, nil
}

// Validate checks the format settings.
func (f *FormatConfig) Validate() error {
	if f.PreviewRows <= 0 {
		return fmt.Errorf("formats.preview_rows must be positive")
	}
	if f.CompressionLevel < 1 || f.CompressionLevel > 9 {
		return fmt.Errorf("formats.compression_level must be between 1 and 9")
	}
	if strings.TrimSpace(f.SheetName) == "" {
		return fmt.Errorf("formats.sheet_name is required")
	}
	return nil
}
