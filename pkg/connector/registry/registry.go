package registry

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/compression"
	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/logger"
)

// Registry maps file formats and extensions to reader and writer factories
type Registry struct {
	sources      map[core.Format]SourceFactory
	destinations map[core.Format]DestinationFactory
	extensions   map[string]core.Format
	unsupported  map[string]string
	info         map[string]*ConnectorInfo
	mu           sync.RWMutex
	logger       *zap.Logger
}

// SourceFactory creates a source for one format.
type SourceFactory func(cfg config.FormatConfig) (core.Source, error)

// DestinationFactory creates a destination for one format.
type DestinationFactory func(cfg config.FormatConfig) (core.Destination, error)

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new format registry
func NewRegistry() *Registry {
	return &Registry{
		sources:      make(map[core.Format]SourceFactory),
		destinations: make(map[core.Format]DestinationFactory),
		extensions:   make(map[string]core.Format),
		unsupported:  make(map[string]string),
		info:         make(map[string]*ConnectorInfo),
		logger:       logger.Get().With(zap.String("component", "format_registry")),
	}
}

// RegisterSource registers a source factory
func (r *Registry) RegisterSource(format core.Format, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[format]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "source format %s already registered", format)
	}

	r.sources[format] = factory
	r.logger.Debug("source format registered", zap.String("format", string(format)))
	return nil
}

// RegisterDestination registers a destination factory
func (r *Registry) RegisterDestination(format core.Format, factory DestinationFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.destinations[format]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "destination format %s already registered", format)
	}

	r.destinations[format] = factory
	r.logger.Debug("destination format registered", zap.String("format", string(format)))
	return nil
}

// RegisterExtensions maps file extensions (".csv") to format.
func (r *Registry) RegisterExtensions(format core.Format, exts ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if owner, exists := r.extensions[ext]; exists && owner != format {
			return errors.Newf(errors.ErrorTypeConfig, "extension %s already registered for %s", ext, owner)
		}
		r.extensions[ext] = format
	}
	return nil
}

// RegisterUnsupported records an extension that is recognised as tabular
// but cannot be handled, with the reason reported to the user.
func (r *Registry) RegisterUnsupported(ext, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsupported[strings.ToLower(ext)] = reason
}

// IsTabularPath reports whether path ends in a recognised tabular extension,
// optionally followed by a compression suffix. Unsupported extensions count.
func (r *Registry) IsTabularPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(compression.StripSuffix(path)))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.extensions[ext]; ok {
		return true
	}
	_, ok := r.unsupported[ext]
	return ok
}

// FormatForPath detects the format of path from its extension.
func (r *Registry) FormatForPath(path string) (core.Format, error) {
	ext := strings.ToLower(filepath.Ext(compression.StripSuffix(path)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if reason, ok := r.unsupported[ext]; ok {
		return "", errors.Newf(errors.ErrorTypeConfig, "%s: %s", filepath.Base(path), reason)
	}
	format, ok := r.extensions[ext]
	if !ok {
		return "", errors.Newf(errors.ErrorTypeConfig, "%s: unrecognised file extension %q", filepath.Base(path), ext).
			WithDetail("supported", r.extensionsLocked())
	}
	return format, nil
}

// CreateSource creates a source for format
func (r *Registry) CreateSource(format core.Format, cfg config.FormatConfig) (core.Source, error) {
	r.mu.RLock()
	factory, exists := r.sources[format]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "no reader registered for format %s", format)
	}

	source, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create "+string(format)+" reader")
	}

	return source, nil
}

// CreateDestination creates a destination for format
func (r *Registry) CreateDestination(format core.Format, cfg config.FormatConfig) (core.Destination, error) {
	r.mu.RLock()
	factory, exists := r.destinations[format]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "no writer registered for format %s", format)
	}

	destination, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create "+string(format)+" writer")
	}

	return destination, nil
}

// SourceForPath combines FormatForPath and CreateSource.
func (r *Registry) SourceForPath(path string, cfg config.FormatConfig) (core.Source, error) {
	format, err := r.FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return r.CreateSource(format, cfg)
}

// DestinationForPath combines FormatForPath and CreateDestination.
func (r *Registry) DestinationForPath(path string, cfg config.FormatConfig) (core.Destination, error) {
	format, err := r.FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return r.CreateDestination(format, cfg)
}

// ListSources returns the registered source formats, sorted
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.sources))
	for name := range r.sources {
		sources = append(sources, string(name))
	}
	sort.Strings(sources)
	return sources
}

// ListDestinations returns the registered destination formats, sorted
func (r *Registry) ListDestinations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	destinations := make([]string, 0, len(r.destinations))
	for name := range r.destinations {
		destinations = append(destinations, string(name))
	}
	sort.Strings(destinations)
	return destinations
}

// Extensions returns the registered extensions, sorted
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensionsLocked()
}

func (r *Registry) extensionsLocked() []string {
	exts := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Clear removes all registrations (mainly for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources = make(map[core.Format]SourceFactory)
	r.destinations = make(map[core.Format]DestinationFactory)
	r.extensions = make(map[string]core.Format)
	r.unsupported = make(map[string]string)
	r.info = make(map[string]*ConnectorInfo)
}

// ConnectorInfo describes a registered reader or writer
type ConnectorInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Extensions   []string `json:"extensions"`
	Capabilities []string `json:"capabilities"`
}

func infoKey(name, typ string) string {
	return typ + "/" + name
}

// RegisterConnectorInfo registers connector metadata
func (r *Registry) RegisterConnectorInfo(info *ConnectorInfo) error {
	if info == nil || info.Name == "" || info.Type == "" {
		return errors.New(errors.ErrorTypeConfig, "connector info requires a name and a type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.info[infoKey(info.Name, info.Type)] = info
	return nil
}

// GetConnectorInfo returns the metadata registered for name and typ.
func (r *Registry) GetConnectorInfo(name, typ string) (*ConnectorInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.info[infoKey(name, typ)]
	return info, ok
}

// ListConnectorInfo returns all connector metadata ordered by type then name
func (r *Registry) ListConnectorInfo() []*ConnectorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ConnectorInfo, 0, len(r.info))
	for _, info := range r.info {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type > out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Global registry functions

// RegisterSource registers a source factory in the global registry
func RegisterSource(format core.Format, factory SourceFactory) error {
	return globalRegistry.RegisterSource(format, factory)
}

// RegisterDestination registers a destination factory in the global registry
func RegisterDestination(format core.Format, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(format, factory)
}

// RegisterExtensions maps extensions to format in the global registry
func RegisterExtensions(format core.Format, exts ...string) error {
	return globalRegistry.RegisterExtensions(format, exts...)
}

// RegisterUnsupported records an unsupported extension in the global registry
func RegisterUnsupported(ext, reason string) {
	globalRegistry.RegisterUnsupported(ext, reason)
}

// RegisterConnectorInfo registers connector metadata in the global registry
func RegisterConnectorInfo(info *ConnectorInfo) error {
	return globalRegistry.RegisterConnectorInfo(info)
}

// ListConnectorInfo returns connector metadata from the global registry
func ListConnectorInfo() []*ConnectorInfo {
	return globalRegistry.ListConnectorInfo()
}

// FormatForPath detects a format with the global registry
func FormatForPath(path string) (core.Format, error) {
	return globalRegistry.FormatForPath(path)
}

// ListSources returns registered source formats from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListDestinations returns registered destination formats from the global registry
func ListDestinations() []string {
	return globalRegistry.ListDestinations()
}

// GetRegistry returns the global registry instance.
// This is the primary way to access the format registry.
func GetRegistry() *Registry {
	return globalRegistry
}
