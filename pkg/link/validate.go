package link

import (
	"strings"

	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// Preflight checks a request before any file is read.
func Preflight(req Request) error {
	if strings.TrimSpace(req.Source.Path) == "" {
		return errors.New(errors.ErrorTypeSourceRead, "no source file was chosen")
	}
	if strings.TrimSpace(req.Destination.Path) == "" {
		return errors.New(errors.ErrorTypeSourceRead, "no destination file was chosen")
	}
	if req.SourceSkip < 0 || req.DestinationSkip < 0 {
		return errors.New(errors.ErrorTypeSourceRead, "rows to skip must be whole numbers of zero or more")
	}
	for _, path := range []string{req.Source.Path, req.Destination.Path} {
		if _, err := registry.FormatForPath(path); err != nil {
			return errors.Wrap(err, errors.ErrorTypeSourceRead, "unsupported input file")
		}
	}

	switch req.Mode {
	case KeyModeAutomatic, "":
		if strings.TrimSpace(req.Key) == "" {
			return errors.New(errors.ErrorTypeMissingKeySelection, "no key column was chosen")
		}
	case KeyModeManual:
		if _, err := ResolveManual(req.SourceKey, req.DestinationKey); err != nil {
			return err
		}
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown key mode %q", req.Mode)
	}

	if len(req.Columns) == 0 {
		return errors.New(errors.ErrorTypeEmptySelection, "no columns were selected to copy")
	}

	switch req.Collisions {
	case "", CollisionOverwrite, CollisionReject:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown collision policy %q", req.Collisions)
	}

	if !req.DryRun && strings.TrimSpace(req.Output) == "" {
		return errors.New(errors.ErrorTypeWrite, "no output file was chosen")
	}
	return nil
}

// CheckSchema verifies the loaded datasets against the resolved key and
// projection. src must already use the unified key name.
func CheckSchema(src, dst *tabular.Dataset, binding KeyBinding, projection []string, policy CollisionPolicy) error {
	key := binding.JoinKey()
	if !dst.HasColumn(key) {
		return errors.Newf(errors.ErrorTypeKeyNotFound, "key column %q is missing from the destination %s", key, dst.Name).
			WithDetail("columns", dst.Columns)
	}
	if !src.HasColumn(key) {
		return errors.Newf(errors.ErrorTypeKeyNotFound, "key column %q is missing from the source %s", binding.SourceKey, src.Name).
			WithDetail("columns", src.Columns)
	}

	have := src.ColumnSet()
	var missing []string
	for _, name := range projection {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrorTypeColumnNotFound, "selected columns missing from the source %s: %s",
			src.Name, strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}

	if policy == CollisionReject {
		existing := dst.ColumnSet()
		var conflicts []string
		for _, name := range projection[1:] {
			if _, ok := existing[name]; ok {
				conflicts = append(conflicts, name)
			}
		}
		if len(conflicts) > 0 {
			return errors.Newf(errors.ErrorTypeColumnConflict, "the destination already has columns %s",
				strings.Join(conflicts, ", ")).
				WithDetail("conflicts", conflicts)
		}
	}
	return nil
}
