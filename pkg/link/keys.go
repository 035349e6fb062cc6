package link

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/tablelink/pkg/errors"
)

// KeyMode selects how the join key is determined.
type KeyMode string

const (
	// KeyModeAutomatic joins on a column name present in both datasets.
	KeyModeAutomatic KeyMode = "automatic"
	// KeyModeManual pairs a source key with a differently named destination key.
	KeyModeManual KeyMode = "manual"
)

// ParseKeyMode parses a mode name. The empty string means automatic.
func ParseKeyMode(s string) (KeyMode, error) {
	switch KeyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyModeAutomatic:
		return KeyModeAutomatic, nil
	case KeyModeManual:
		return KeyModeManual, nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unknown key mode %q; use %q or %q", s, KeyModeAutomatic, KeyModeManual)
}

// KeyBinding pairs the source key column with the destination key column.
// The source column is renamed to DestinationKey before the merge.
type KeyBinding struct {
	SourceKey      string `json:"source_key"`
	DestinationKey string `json:"destination_key"`
}

// Renames reports whether the source key column must be renamed.
func (b KeyBinding) Renames() bool {
	return b.SourceKey != b.DestinationKey
}

// JoinKey is the unified key name used by the merge.
func (b KeyBinding) JoinKey() string {
	return b.DestinationKey
}

// ResolveAutomatic returns the column names shared by a and b.
func ResolveAutomatic(a, b []string) (map[string]struct{}, error) {
	inA := make(map[string]struct{}, len(a))
	for _, name := range a {
		inA[name] = struct{}{}
	}

	common := make(map[string]struct{})
	for _, name := range b {
		if _, ok := inA[name]; ok {
			common[name] = struct{}{}
		}
	}
	if len(common) == 0 {
		return nil, errors.New(errors.ErrorTypeNoCommonKey, "the two files have no column name in common; use manual key mode")
	}
	return common, nil
}

// CommonKeys is ResolveAutomatic with the result sorted for display.
func CommonKeys(a, b []string) ([]string, error) {
	common, err := ResolveAutomatic(a, b)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(common))
	for name := range common {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

// ResolveManual binds an explicit key pair.
func ResolveManual(sourceKey, destinationKey string) (KeyBinding, error) {
	var missing []string
	if strings.TrimSpace(sourceKey) == "" {
		missing = append(missing, "source key")
	}
	if strings.TrimSpace(destinationKey) == "" {
		missing = append(missing, "destination key")
	}
	if len(missing) > 0 {
		return KeyBinding{}, errors.Newf(errors.ErrorTypeMissingKeySelection,
			"manual key mode needs both key columns; missing %s", strings.Join(missing, " and "))
	}
	return KeyBinding{SourceKey: sourceKey, DestinationKey: destinationKey}, nil
}

// ResolveAutomaticKey checks that key is one of the columns shared by the
// source columns a and the destination columns b.
func ResolveAutomaticKey(key string, a, b []string) (KeyBinding, error) {
	if strings.TrimSpace(key) == "" {
		return KeyBinding{}, errors.New(errors.ErrorTypeMissingKeySelection, "no key column was chosen")
	}
	common, err := ResolveAutomatic(a, b)
	if err != nil {
		return KeyBinding{}, err
	}
	if _, ok := common[key]; !ok {
		return KeyBinding{}, errors.Newf(errors.ErrorTypeKeyNotFound, "key column %q is not present in both files", key).
			WithDetail("common_keys", sortedKeys(common))
	}
	return KeyBinding{SourceKey: key, DestinationKey: key}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
