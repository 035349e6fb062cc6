package link

import (
	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/destinations"
	"github.com/ajitpratap0/tablelink/pkg/errors"
)

// Request describes one link operation. The engine never modifies it.
type Request struct {
	Source          core.Origin
	Destination     core.Origin
	SourceSkip      int
	DestinationSkip int

	Mode KeyMode
	// Key is the shared key column in automatic mode
	Key string
	// SourceKey and DestinationKey pair the key columns in manual mode
	SourceKey      string
	DestinationKey string

	// Columns are the source columns to copy, in order
	Columns []string
	// Output is the result path; a missing extension is inferred from the destination
	Output string

	Match      MatchOptions
	Collisions CollisionPolicy
	// DryRun merges without writing the output
	DryRun bool
}

// Binding returns the key binding the request asks for. In automatic mode
// both sides use Key.
func (r Request) Binding() KeyBinding {
	if r.Mode == KeyModeManual {
		return KeyBinding{SourceKey: r.SourceKey, DestinationKey: r.DestinationKey}
	}
	return KeyBinding{SourceKey: r.Key, DestinationKey: r.Key}
}

// RequestFromConfig converts a file or flag configuration into a request.
// An empty output path becomes the suggested name for the destination.
func RequestFromConfig(cfg *config.LinkConfig) (Request, error) {
	if err := cfg.Validate(); err != nil {
		return Request{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid link configuration")
	}

	mode, err := ParseKeyMode(cfg.Key.Mode)
	if err != nil {
		return Request{}, err
	}
	policy, err := ParseCollisionPolicy(cfg.OnCollision)
	if err != nil {
		return Request{}, err
	}
	source, err := originFromConfig(cfg.Source)
	if err != nil {
		return Request{}, err
	}
	destination, err := originFromConfig(cfg.Destination)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Source:          source,
		Destination:     destination,
		SourceSkip:      cfg.Source.Skip,
		DestinationSkip: cfg.Destination.Skip,
		Mode:            mode,
		Columns:         append([]string(nil), cfg.Columns...),
		Output:          cfg.Output,
		Match: MatchOptions{
			TrimSpace:       cfg.Match.TrimSpace,
			CaseInsensitive: cfg.Match.IgnoreCase,
		},
		Collisions: policy,
		DryRun:     cfg.DryRun,
	}

	if mode == KeyModeManual {
		req.SourceKey = cfg.Key.Source
		req.DestinationKey = cfg.Key.Destination
	} else {
		req.Key = cfg.Key.Name
	}

	if req.Output == "" && destination.Path != "" {
		req.Output = destinations.SuggestName(destination)
	}
	return req, nil
}

func originFromConfig(o config.OriginConfig) (core.Origin, error) {
	origin := core.Origin{
		Path:     o.Path,
		Sheet:    o.Sheet,
		Encoding: o.Encoding,
	}
	if o.Delimiter != "" {
		d, err := o.DelimiterRune()
		if err != nil {
			return core.Origin{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid delimiter")
		}
		origin.Delimiter = d
	}
	return origin, nil
}
