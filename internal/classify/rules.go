package classify

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultNoiseThreshold separates flat tiles from busy ones. The value was
// tuned by eye against one asset generation; override it in the rules file
// when a texture refresh shifts the distribution.
const DefaultNoiseThreshold = 120

// Rules holds the tunable inputs of flag derivation: the noise cutoff and
// the identifier keyword lists. Keywords match as substrings of the item
// id.
type Rules struct {
	NoiseThreshold   float64  `toml:"noise_threshold"`
	OreKeywords      []string `toml:"ore_keywords"`
	RedstoneKeywords []string `toml:"redstone_keywords"`
	PlantKeywords    []string `toml:"plant_keywords"`
	NotFullKeywords  []string `toml:"not_full_keywords"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		NoiseThreshold: DefaultNoiseThreshold,
		OreKeywords:    []string{"ore"},
		RedstoneKeywords: []string{
			"redstone", "repeater", "comparator", "lever", "observer",
			"dispenser", "dropper", "piston", "sticky_piston", "tripwire",
			"daylight_detector", "hopper", "target", "tnt", "note_block",
			"jukebox",
		},
		PlantKeywords: []string{
			"sapling", "flower", "bush", "grass", "fern", "vine", "kelp",
			"seagrass", "cane", "moss", "fungus", "roots", "sprouts",
		},
		NotFullKeywords: []string{
			"rail", "lantern", "torch", "wall_torch", "rod", "chain",
			"door", "trapdoor", "button", "pressure_plate", "slab",
			"stairs", "wall", "fence", "gate", "carpet", "pane",
			"glass_pane", "sign", "hanging_sign", "banner", "bed",
			"candle", "ladder", "lever", "tripwire", "hook", "flower",
			"sapling", "bush", "vine", "kelp", "seagrass", "cane", "moss",
			"skull", "head", "coral", "fan", "stand", "anvil", "bell",
			"campfire", "cauldron", "grindstone", "lectern", "hopper",
			"end_rod", "conduit", "beacon",
		},
	}
}

// LoadRules reads a TOML rules file and overlays it on the defaults. A
// missing file (or an empty path) yields the defaults; fields the file
// does not set keep their default values.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return rules, err
	}
	if err := toml.Unmarshal(data, &rules); err != nil {
		return DefaultRules(), fmt.Errorf("rules file %s: %w", path, err)
	}
	if rules.NoiseThreshold <= 0 {
		rules.NoiseThreshold = DefaultNoiseThreshold
	}
	return rules, nil
}
