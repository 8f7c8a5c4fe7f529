// Package classify derives the per-item boolean flag set the catalog
// stores under tag_flags. Flags come from three sources: the item's
// official tags, keyword matches against its identifier, and composites
// computed from the other flags. The flag vocabulary is closed: every
// item carries every flag, true or false.
package classify

import (
	"sort"
	"strings"
)

// DefaultNamespace qualifies backing tags when a Deriver has none set.
const DefaultNamespace = "minecraft"

// tagRule asserts one flag when any of its backing tags is present.
// Backing tags are written bare and namespace-qualified at derivation.
type tagRule struct {
	flag string
	tags []string
}

var tagRules = []tagRule{
	{"planks", []string{"planks"}},
	{"logs", []string{"logs", "logs_that_burn"}},
	{"leaves", []string{"leaves"}},
	{"glass", []string{"glass", "impermeable"}},
	{"wool", []string{"wool"}},
	{"terracotta", []string{"terracotta"}},
	{"concrete", []string{"concrete"}},
	{"mineable_pickaxe", []string{"mineable/pickaxe"}},
	{"mineable_axe", []string{"mineable/axe"}},
	{"mineable_shovel", []string{"mineable/shovel"}},
	{"mineable_hoe", []string{"mineable/hoe"}},
	{"flowers", []string{"flowers"}},
	{"saplings", []string{"saplings"}},
	{"slab", []string{"slabs"}},
	{"stairs", []string{"stairs"}},
	{"walls", []string{"walls"}},
	{"fences", []string{"fences"}},
	{"fence_gates", []string{"fence_gates"}},
	{"rails", []string{"rails"}},
	{"buttons", []string{"buttons"}},
	{"pressure_plates", []string{"pressure_plates"}},
	{"trapdoors", []string{"trapdoors"}},
	{"doors", []string{"doors"}},
}

// shapeFlags are the tag-backed flags that rule out a full cube.
var shapeFlags = []string{
	"slab", "stairs", "walls", "fences", "fence_gates", "rails",
	"buttons", "pressure_plates", "trapdoors", "doors",
}

// keywordFlags and compositeFlags complete the vocabulary.
var (
	keywordFlags   = []string{"ore", "redstone"}
	compositeFlags = []string{"plantlike", "full_block", "building_block"}
)

// Flags maps every name in the vocabulary to its derived value.
type Flags map[string]bool

// Vocabulary returns the closed set of flag names, sorted.
func Vocabulary() []string {
	names := make([]string, 0, len(tagRules)+len(keywordFlags)+len(compositeFlags))
	for _, r := range tagRules {
		names = append(names, r.flag)
	}
	names = append(names, keywordFlags...)
	names = append(names, compositeFlags...)
	sort.Strings(names)
	return names
}

// Deriver computes flags for items of one namespace under one rule set.
// The zero value uses DefaultRules and DefaultNamespace.
type Deriver struct {
	Rules     Rules
	Namespace string
}

// Derive computes the full flag set for an item. officialTags are the
// item's qualified tag ids as produced by the tag graph.
func (d *Deriver) Derive(itemID string, officialTags []string) Flags {
	rules := d.Rules
	if rules.NoiseThreshold == 0 {
		rules = DefaultRules()
	}
	ns := d.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	have := make(map[string]bool, len(officialTags))
	for _, tag := range officialTags {
		have[tag] = true
	}

	flags := make(Flags, len(tagRules)+len(keywordFlags)+len(compositeFlags))
	for _, r := range tagRules {
		v := false
		for _, tag := range r.tags {
			if have[ns+":"+tag] {
				v = true
				break
			}
		}
		flags[r.flag] = v
	}

	flags["ore"] = containsAny(itemID, rules.OreKeywords)
	flags["redstone"] = containsAny(itemID, rules.RedstoneKeywords)
	flags["plantlike"] = containsAny(itemID, rules.PlantKeywords) ||
		flags["flowers"] || flags["saplings"]

	notFull := containsAny(itemID, rules.NotFullKeywords) || flags["plantlike"]
	for _, flag := range shapeFlags {
		notFull = notFull || flags[flag]
	}
	flags["full_block"] = !notFull
	flags["building_block"] = flags["full_block"] && !flags["ore"] && !flags["redstone"]

	return flags
}

// ApplyFullBlockOverride forces full_block to the curated value and
// recomputes building_block, which depends on it. Applying the same
// override twice is a no-op.
func ApplyFullBlockOverride(flags Flags, forced bool) {
	flags["full_block"] = forced
	flags["building_block"] = forced && !flags["ore"] && !flags["redstone"]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
