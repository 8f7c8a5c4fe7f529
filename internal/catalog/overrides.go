package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far an unknown override key may be from a
// real block id before we stop guessing what was meant.
const maxSuggestDistance = 3

// loadOverrides reads a JSON object mapping block ids to booleans. A
// missing file is an empty table. Keys are normalized to lower case so
// curation files are case-insensitive.
func loadOverrides(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}

	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("override table %s: %w", path, err)
	}

	out := make(map[string]bool, len(raw))
	for k, v := range raw {
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

// overrideTable names an override table for diagnostics.
type overrideTable struct {
	name string
	keys map[string]bool
}

// checkOverrideKeys returns one warning per override key that names no
// known block, with a typo suggestion when a close id exists. Warnings
// come out sorted per table.
func checkOverrideKeys(known map[string]bool, ids []string, tables []overrideTable) []string {
	warnings := []string{}
	for _, table := range tables {
		unknown := make([]string, 0)
		for key := range table.keys {
			if !known[key] {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)

		for _, key := range unknown {
			if closest, ok := suggestID(key, ids); ok {
				warnings = append(warnings, fmt.Sprintf("%s: unknown block %q (did you mean %q?)", table.name, key, closest))
			} else {
				warnings = append(warnings, fmt.Sprintf("%s: unknown block %q", table.name, key))
			}
		}
	}
	return warnings
}

// suggestID returns the known id closest to id when the edit distance is
// small enough to look like a typo. Ties break lexically.
func suggestID(id string, known []string) (string, bool) {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, cand := range known {
		d := levenshtein.ComputeDistance(id, cand)
		if d < bestDist || (d == bestDist && best != "" && cand < best) {
			best = cand
			bestDist = d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
