// Package tags loads the game's block tag tree and flattens every tag to
// the concrete item identifiers it contains.
//
// A tag file is a JSON object with a "values" array. Each value is either
// a concrete item reference ("minecraft:oak_planks"), a structured form
// of the same ({"id": "minecraft:oak_planks"}), or a nested tag reference
// ("#minecraft:logs"). Nested references may recurse arbitrarily and may
// form cycles; a reference back into an unfinished chain contributes
// nothing and is recorded for reporting.
package tags

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoTagTree marks a missing tag directory. The Graph returned alongside
// it is empty but usable, so callers can warn and continue with zero tags.
var ErrNoTagTree = errors.New("tag directory not found")

// Graph is a loaded tag universe. Expansion mutates the memo table, so a
// Graph must not be resolved from multiple goroutines; expand everything
// first, then share the results.
type Graph struct {
	namespace string

	// raw holds each tag's unexpanded entry list, keyed by qualified
	// tag id ("minecraft:planks", "minecraft:mineable/axe").
	raw map[string][]string

	// memo caches fully expanded tags as sets of bare item ids.
	memo map[string]map[string]bool

	// cycles records tag ids whose expansion was cut short by a
	// reference back into the active chain.
	cycles map[string]bool
}

// tagFile is the on-disk shape of one tag definition.
type tagFile struct {
	Values []any `json:"values"`
}

// Load reads every .json file below dir into a Graph. Tag ids are the
// file paths relative to dir, namespace-qualified, without the extension;
// subdirectories become id segments ("mineable/axe"). A malformed tag
// file fails the whole load.
func Load(dir, namespace string) (*Graph, error) {
	g := &Graph{
		namespace: namespace,
		raw:       make(map[string][]string),
		memo:      make(map[string]map[string]bool),
		cycles:    make(map[string]bool),
	}

	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return g, fmt.Errorf("%w: %s", ErrNoTagTree, dir)
		}
		return nil, err
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var tf tagFile
		if err := json.Unmarshal(data, &tf); err != nil {
			return fmt.Errorf("tag file %s: %w", path, err)
		}

		id := namespace + ":" + strings.TrimSuffix(filepath.ToSlash(rel), ".json")
		g.raw[id] = flattenEntries(tf.Values)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// flattenEntries reduces the mixed-type values array to plain strings.
// Structured entries contribute their "id"; anything else is dropped.
func flattenEntries(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch e := v.(type) {
		case string:
			if e != "" {
				out = append(out, e)
			}
		case map[string]any:
			if id, ok := e["id"].(string); ok && id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// Len returns the number of tags in the graph.
func (g *Graph) Len() int { return len(g.raw) }

// Resolve expands tagID to its concrete item ids, sorted. Unknown tags
// resolve to nothing. Results are memoized, so repeated calls are cheap.
func (g *Graph) Resolve(tagID string) []string {
	return sortedKeys(g.resolve(tagID))
}

// ResolveAll expands every tag in the graph. Tags are expanded in sorted
// id order, which pins down the result when cycles are present.
func (g *Graph) ResolveAll() map[string][]string {
	out := make(map[string][]string, len(g.raw))
	for _, id := range sortedRawIDs(g.raw) {
		out[id] = g.Resolve(id)
	}
	return out
}

// Invert maps each concrete item id to the sorted list of tags containing
// it. The expansion state is whatever previous Resolve calls produced, so
// callers normally run ResolveAll first.
func (g *Graph) Invert() map[string][]string {
	byItem := make(map[string]map[string]bool)
	for _, id := range sortedRawIDs(g.raw) {
		for _, item := range g.Resolve(id) {
			if byItem[item] == nil {
				byItem[item] = make(map[string]bool)
			}
			byItem[item][id] = true
		}
	}

	out := make(map[string][]string, len(byItem))
	for item, tagSet := range byItem {
		out[item] = sortedKeys(tagSet)
	}
	return out
}

// Cycles returns the tag ids that were re-entered during expansion, sorted.
func (g *Graph) Cycles() []string {
	return sortedKeys(g.cycles)
}

// frame is one tag being expanded on the explicit traversal stack.
type frame struct {
	id   string
	next int
	out  map[string]bool
}

// resolve runs an iterative depth-first expansion of tagID. Every tag
// finished along the way is memoized. A nested reference that is already
// on the stack is a cycle: it contributes nothing and is recorded.
func (g *Graph) resolve(tagID string) map[string]bool {
	if done, ok := g.memo[tagID]; ok {
		return done
	}

	visiting := map[string]bool{tagID: true}
	stack := []*frame{{id: tagID, out: make(map[string]bool)}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		entries := g.raw[f.id]

		if f.next < len(entries) {
			entry := entries[f.next]
			f.next++

			ref, isRef := strings.CutPrefix(entry, "#")
			if !isRef {
				if item, ok := g.concreteItem(entry); ok {
					f.out[item] = true
				}
				continue
			}
			if done, ok := g.memo[ref]; ok {
				for item := range done {
					f.out[item] = true
				}
				continue
			}
			if visiting[ref] {
				g.cycles[ref] = true
				continue
			}
			visiting[ref] = true
			stack = append(stack, &frame{id: ref, out: make(map[string]bool)})
			continue
		}

		// Tag finished: memoize it and fold it into its parent.
		g.memo[f.id] = f.out
		delete(visiting, f.id)
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			for item := range f.out {
				parent.out[item] = true
			}
		}
	}

	return g.memo[tagID]
}

// concreteItem strips the namespace from an item reference. References
// without a namespace or from a foreign namespace are dropped.
func (g *Graph) concreteItem(entry string) (string, bool) {
	ns, name, ok := strings.Cut(entry, ":")
	if !ok || ns != g.namespace || name == "" {
		return "", false
	}
	return name, true
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedRawIDs(raw map[string][]string) []string {
	out := make([]string, 0, len(raw))
	for id := range raw {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
