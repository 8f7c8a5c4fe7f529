// Package catalog assembles the block catalog a map-art site consumes:
// per-block perceptual color data, classification flags, official tags,
// and staged top-face textures, emitted as deterministic JSON artifacts
// alongside a build report and a TOML metrics history.
package catalog

import (
	"math"
	"strings"
	"unicode"

	"github.com/mapsmith/tessera/internal/classify"
)

// Record is one block's entry in the emitted catalog document.
type Record struct {
	Name         string         `json:"name"`
	Img          string         `json:"img"`
	Swatch       string         `json:"swatch"`
	AvgLab       [3]float64     `json:"avg_lab"`
	Noise        float64        `json:"noise"`
	Tags         RecordTags     `json:"tags"`
	OfficialTags []string       `json:"official_tags"`
	TagFlags     classify.Flags `json:"tag_flags"`
}

// RecordTags carries the booleans that come from measurement and manual
// curation rather than the tag graph.
type RecordTags struct {
	Transparent  bool `json:"transparent"`
	Noisy        bool `json:"noisy"`
	CreativeOnly bool `json:"creative_only"`
}

// Catalog maps block id to record. encoding/json emits map keys sorted,
// which keeps rebuilds over unchanged inputs byte-identical.
type Catalog map[string]Record

// MapartSafe reports whether a cataloged block may appear in map art: a
// full, opaque cube that is neither leaves nor glass.
func MapartSafe(rec Record) bool {
	return rec.TagFlags["full_block"] &&
		!rec.Tags.Transparent &&
		!rec.TagFlags["leaves"] &&
		!rec.TagFlags["glass"]
}

// prettyName turns "polished_blackstone" into "Polished Blackstone".
func prettyName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// round3 rounds half away from zero to three decimals. Negative zero is
// normalized so it never reaches the JSON encoder.
func round3(x float64) float64 {
	v := math.Round(x*1000) / 1000
	if v == 0 {
		return 0
	}
	return v
}
