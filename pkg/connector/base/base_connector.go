// Package base provides the BaseConnector that the file readers and writers
// embed, plus helpers they share.
//
// # Usage
//
//	type Source struct {
//	    *base.BaseConnector
//	}
//
//	func NewSource(cfg config.FormatConfig) (core.Source, error) {
//	    return &Source{
//	        BaseConnector: base.NewBaseConnector("csv", core.ConnectorTypeSource, core.FormatCSV, cfg),
//	    }, nil
//	}
//
// Writers publish files through WriteFileAtomic so that a failed write never
// leaves a partial output behind.
package base

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/logger"
)

// BaseConnector holds what every reader and writer needs: identity, format
// options and a structured logger.
type BaseConnector struct {
	name          string
	connectorType core.ConnectorType
	format        core.Format
	config        config.FormatConfig
	logger        *zap.Logger
}

// NewBaseConnector creates a base connector. Zero values in cfg are replaced
// with config.DefaultFormatConfig values.
func NewBaseConnector(name string, connectorType core.ConnectorType, format core.Format, cfg config.FormatConfig) *BaseConnector {
	defaults := config.DefaultFormatConfig()
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = defaults.PreviewRows
	}
	if cfg.CompressionLevel == 0 {
		cfg.CompressionLevel = defaults.CompressionLevel
	}
	if cfg.SheetName == "" {
		cfg.SheetName = defaults.SheetName
	}

	return &BaseConnector{
		name:          name,
		connectorType: connectorType,
		format:        format,
		config:        cfg,
		logger: logger.Get().With(
			zap.String("connector", name),
			zap.String("type", string(connectorType)),
		),
	}
}

// Name returns the connector name.
func (bc *BaseConnector) Name() string {
	return bc.name
}

// Type returns whether this is a source or a destination.
func (bc *BaseConnector) Type() core.ConnectorType {
	return bc.connectorType
}

// Format returns the file format handled by the connector.
func (bc *BaseConnector) Format() core.Format {
	return bc.format
}

// GetConfig returns the effective format options.
func (bc *BaseConnector) GetConfig() config.FormatConfig {
	return bc.config
}

// GetLogger returns the connector logger.
func (bc *BaseConnector) GetLogger() *zap.Logger {
	return bc.logger
}

// LoggerFor returns the connector logger enriched with the link ID, origin
// and trace fields carried by ctx.
func (bc *BaseConnector) LoggerFor(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, bc.logger)
}

// NewProgressReporter starts row accounting for one transfer.
func (bc *BaseConnector) NewProgressReporter(ctx context.Context, direction, path string) *ProgressReporter {
	return NewProgressReporter(bc.LoggerFor(ctx), string(bc.format), direction, path)
}
