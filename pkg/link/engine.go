package link

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/destinations"
	"github.com/ajitpratap0/tablelink/pkg/connector/sources"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/logger"
	"github.com/ajitpratap0/tablelink/pkg/metrics"
	"github.com/ajitpratap0/tablelink/pkg/observability"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// Phase is a state of a link run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseMerging    Phase = "merging"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Observer is called on every phase transition of a link run, from the
// goroutine running Link.
type Observer func(Phase)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers a phase observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithFormats sets the reader and writer options.
func WithFormats(cfg config.FormatConfig) Option {
	return func(e *Engine) { e.formats = cfg }
}

// Engine runs link operations. It is safe for concurrent use; at most one
// run may target a given output path at a time.
type Engine struct {
	logger   *zap.Logger
	observer Observer
	formats  config.FormatConfig

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		formats:  config.DefaultFormatConfig(),
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get()
	}
	e.logger = e.logger.With(zap.String("component", "link_engine"))
	return e
}

// Load reads origin, either the configured preview rows or the whole file.
func (e *Engine) Load(ctx context.Context, origin core.Origin, skip int, previewOnly bool) (*tabular.Dataset, error) {
	src, err := sources.ForPath(origin.Path, e.formats)
	if err != nil {
		return nil, err
	}
	ctx = logger.ContextWithOrigin(ctx, origin.Path)
	if previewOnly {
		return src.LoadPreview(ctx, origin, skip, e.formats.PreviewRows)
	}
	return src.LoadFull(ctx, origin, skip)
}

// CommonKeys returns the column names a and b share, sorted.
func (e *Engine) CommonKeys(a, b []string) ([]string, error) {
	return CommonKeys(a, b)
}

// Link runs req to completion. On failure no output file is written and the
// engine stays usable.
func (e *Engine) Link(ctx context.Context, req Request) (*Result, error) {
	linkID := uuid.NewString()
	ctx = logger.ContextWithLinkID(ctx, linkID)

	ctx, span := observability.StartSpan(ctx, "link")
	defer span.End()
	span.SetAttribute("link.id", linkID)
	span.SetAttribute("link.mode", string(req.Mode))
	span.SetAttribute("link.dry_run", req.DryRun)

	log := logger.FromContext(ctx, e.logger)
	if sc := span.SpanContext(); sc.IsValid() {
		log = log.With(zap.String("trace_id", sc.TraceID().String()))
	}
	metrics.ActiveLinks.Inc()
	defer metrics.ActiveLinks.Dec()

	mode := req.Mode
	if mode == "" {
		mode = KeyModeAutomatic
	}

	timer := metrics.NewTimer("total")
	e.notify(PhaseIdle)
	res, err := e.run(ctx, req, log)
	duration := timer.ObservePhase()

	span.RecordError(err)
	if err != nil {
		e.notify(PhaseFailed)
		metrics.LinksTotal.WithLabelValues(string(mode), metrics.StatusFailure).Inc()
		metrics.LinkErrors.WithLabelValues(string(errors.TypeOf(err))).Inc()
		log.Warn("link failed",
			zap.String("kind", string(errors.TypeOf(err))),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, err
	}

	res.LinkID = linkID
	res.Mode = mode
	res.Duration = duration
	e.notify(PhaseDone)

	metrics.LinksTotal.WithLabelValues(string(mode), metrics.StatusSuccess).Inc()
	metrics.ColumnsAdded.Observe(float64(res.Stats.ColumnsAdded))
	metrics.RowsLinked.WithLabelValues(metrics.ResultMatched).Add(float64(res.Stats.Matched))
	metrics.RowsLinked.WithLabelValues(metrics.ResultUnmatched).Add(float64(res.Stats.Unmatched))
	span.SetAttribute("link.rows", res.Stats.Rows)
	span.SetAttribute("link.matched", res.Stats.Matched)

	log.Info("link complete",
		zap.String("key", res.Key),
		zap.Strings("added", res.Added),
		zap.Int("rows", res.Stats.Rows),
		zap.Int("matched", res.Stats.Matched),
		zap.Int("unmatched", res.Stats.Unmatched),
		zap.Int("duplicate_source_keys", res.Stats.DuplicateSourceKeys),
		zap.String("output", res.Output),
		zap.Duration("duration", duration))
	return res, nil
}

func (e *Engine) run(ctx context.Context, req Request, log *zap.Logger) (*Result, error) {
	e.notify(PhaseValidating)
	log.Debug("validating",
		zap.String("source", req.Source.Path),
		zap.String("destination", req.Destination.Path))

	if err := Preflight(req); err != nil {
		return nil, err
	}

	var output string
	if !req.DryRun {
		var err error
		output, err = destinations.ResolveOutputPath(req.Output, req.Destination)
		if err != nil {
			return nil, err
		}
		release, err := e.acquire(output)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	src, dst, err := e.loadBoth(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		binding    KeyBinding
		projection []string
		projected  *tabular.Dataset
	)
	err = observability.Trace(ctx, "link.resolve", func(context.Context) error {
		var err error
		if binding, err = e.resolveKey(req, src, dst); err != nil {
			return err
		}
		if err = unifyKey(src, binding); err != nil {
			return err
		}
		if projection, err = Project(unifySelection(req.Columns, binding), binding.JoinKey()); err != nil {
			return err
		}
		if err = CheckSchema(src, dst, binding, projection, req.Collisions); err != nil {
			return err
		}
		// the merge only needs the projected columns
		projected, err = src.Select(projection)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeColumnNotFound, "cannot project the source")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.notify(PhaseMerging)
	log.Debug("merging", zap.String("key", binding.JoinKey()), zap.Strings("projection", projection))

	_, mergeSpan := observability.StartSpan(ctx, "link.merge")
	mergeTimer := metrics.NewTimer("merge")
	merged, stats := Merge(dst, projected, projection, req.Match)
	mergeTimer.ObservePhase()
	mergeSpan.SetAttribute("link.rows", stats.Rows)
	mergeSpan.SetAttribute("link.matched", stats.Matched)
	if stats.DuplicateSourceKeys > 0 {
		mergeSpan.AddEvent("duplicate_source_keys", attribute.Int("ignored_rows", stats.DuplicateSourceKeys))
	}
	mergeSpan.End()

	if stats.DuplicateSourceKeys > 0 {
		log.Warn("source has repeated key values; the first occurrence was used",
			zap.String("key", binding.JoinKey()),
			zap.Int("ignored_rows", stats.DuplicateSourceKeys))
	}

	res := &Result{
		Dataset:    merged,
		Binding:    binding,
		Key:        binding.JoinKey(),
		Projection: projection,
		Added:      append([]string(nil), projection[1:]...),
		Stats:      stats,
		DryRun:     req.DryRun,
	}
	if req.DryRun {
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.write(ctx, merged, output); err != nil {
		return nil, err
	}
	res.Output = output
	return res, nil
}

func (e *Engine) loadBoth(ctx context.Context, req Request) (src, dst *tabular.Dataset, err error) {
	ctx, span := observability.StartSpan(ctx, "link.load")
	defer span.End()
	timer := metrics.NewTimer("load")
	defer timer.ObservePhase()

	src, err = e.Load(ctx, req.Source, req.SourceSkip, false)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	dst, err = e.Load(ctx, req.Destination, req.DestinationSkip, false)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttribute("source.rows", src.Len())
	span.SetAttribute("destination.rows", dst.Len())
	return src, dst, nil
}

func (e *Engine) resolveKey(req Request, src, dst *tabular.Dataset) (KeyBinding, error) {
	if req.Mode == KeyModeManual {
		binding, err := ResolveManual(req.SourceKey, req.DestinationKey)
		if err != nil {
			return KeyBinding{}, err
		}
		if !src.HasColumn(binding.SourceKey) {
			return KeyBinding{}, errors.Newf(errors.ErrorTypeKeyNotFound, "key column %q is missing from the source %s",
				binding.SourceKey, src.Name).WithDetail("columns", src.Columns)
		}
		return binding, nil
	}
	return ResolveAutomaticKey(req.Key, src.Columns, dst.Columns)
}

// unifyKey renames the source key to the join key. A different source
// column already named like the join key is dropped so that exactly one
// join key remains.
func unifyKey(src *tabular.Dataset, binding KeyBinding) error {
	if !binding.Renames() {
		return nil
	}
	src.DropColumn(binding.JoinKey())
	if err := src.RenameColumn(binding.SourceKey, binding.JoinKey()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeKeyNotFound, "cannot rename the source key")
	}
	return nil
}

// unifySelection maps a selected source key to the join key.
func unifySelection(columns []string, binding KeyBinding) []string {
	if !binding.Renames() {
		return columns
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		if c == binding.SourceKey {
			c = binding.JoinKey()
		}
		out[i] = c
	}
	return out
}

func (e *Engine) write(ctx context.Context, ds *tabular.Dataset, output string) error {
	ctx, span := observability.StartSpan(ctx, "link.write")
	defer span.End()
	span.SetAttribute("output", output)
	timer := metrics.NewTimer("write")
	defer timer.ObservePhase()

	dest, err := destinations.ForPath(output, e.formats)
	if err != nil {
		span.RecordError(err)
		return err
	}
	err = dest.Write(logger.ContextWithOrigin(ctx, output), ds, output)
	span.RecordError(err)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "cannot write "+filepath.Base(output))
	}
	return nil
}

// acquire reserves output for one run and returns its release function.
func (e *Engine) acquire(output string) (func(), error) {
	key := output
	if abs, err := filepath.Abs(output); err == nil {
		key = abs
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[key]; busy {
		return nil, errors.Newf(errors.ErrorTypeWrite, "another link is already writing %s", output)
	}
	e.inFlight[key] = struct{}{}
	return func() {
		e.mu.Lock()
		delete(e.inFlight, key)
		e.mu.Unlock()
	}, nil
}

func (e *Engine) notify(p Phase) {
	if e.observer != nil {
		e.observer(p)
	}
}
