// Package models resolves which texture a block shows on its upward
// face. The answer lives behind two levels of indirection: a block's
// display-state file names a model, and models form parent chains whose
// texture tables assign files to named slots ("top", "side", "all").
// Resolution walks both levels and falls back to the block's own id when
// the chain never pins a texture down.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Defaults for the safety bounds. Real vanilla chains are three or four
// links deep; anything near these limits is a broken asset tree.
const (
	DefaultMaxDepth = 30
	DefaultMaxHops  = 30
)

// SourceFallback marks a resolution that gave up and used the block id
// as the texture stem. The corresponding image may not exist.
const SourceFallback = "fallback.block_id"

var (
	// ErrNoBlockstate marks a block with no display-state file.
	ErrNoBlockstate = errors.New("no blockstate definition")

	// ErrNoModelRef marks a display-state that names no model at all.
	ErrNoModelRef = errors.New("blockstate names no model")

	// ErrNoModelFile marks a model reference with no file behind it.
	ErrNoModelFile = errors.New("model file not found")
)

// modelFile is the on-disk shape of one model definition.
type modelFile struct {
	Parent   string            `json:"parent"`
	Textures map[string]string `json:"textures"`
	Elements []element         `json:"elements"`
}

type element struct {
	Faces map[string]face `json:"faces"`
}

type face struct {
	Texture string `json:"texture"`
}

// Resolution records how a block's top-face texture was found.
type Resolution struct {
	// ModelRef is the model reference chosen from the display-state.
	ModelRef string

	// ModelPath is the file that reference resolved to.
	ModelPath string

	// Texture is the final texture stem (file name without extension).
	Texture string

	// Source names the rule that produced Texture: "elements.faces.up",
	// "textures.<slot>", or SourceFallback.
	Source string
}

// Resolver finds top-face textures under one asset tree. Model files are
// cached after first read, so a Resolver is safe for concurrent use and
// cheap to share across a whole build.
type Resolver struct {
	BlockstatesDir string
	ModelsDir      string

	// MaxDepth bounds the parent chain; MaxHops bounds slot alias
	// dereferencing. Zero means the package default.
	MaxDepth int
	MaxHops  int

	mu    sync.Mutex
	cache map[string]*modelFile
}

// NewResolver returns a Resolver over the given blockstates and models
// directories with default bounds.
func NewResolver(blockstatesDir, modelsDir string) *Resolver {
	return &Resolver{
		BlockstatesDir: blockstatesDir,
		ModelsDir:      modelsDir,
	}
}

// ResolveTopFace resolves the texture stem behind blockID's upward face.
//
// The leaf model's explicit "up" faces win; otherwise the merged texture
// table is probed through the conventional top slots; otherwise the block
// id itself is the stem, with Source set to SourceFallback.
func (r *Resolver) ResolveTopFace(blockID string) (Resolution, error) {
	ref, err := r.PickModelRef(blockID)
	if err != nil {
		return Resolution{}, err
	}

	path, ok := r.modelPath(ref)
	if !ok {
		return Resolution{ModelRef: ref}, fmt.Errorf("%w: %s (ref %q)", ErrNoModelFile, blockID, ref)
	}

	chain, err := r.loadChain(path)
	if err != nil {
		return Resolution{ModelRef: ref, ModelPath: path}, err
	}

	slots := mergeSlots(chain)
	leaf := chain[0].model
	res := Resolution{ModelRef: ref, ModelPath: path}

	if stem, ok := upFaceFromElements(leaf, slots, r.maxHops()); ok {
		res.Texture = stem
		res.Source = "elements.faces.up"
		return res, nil
	}
	if stem, slot, ok := upFaceFromSlots(slots, r.maxHops()); ok {
		res.Texture = stem
		res.Source = "textures." + slot
		return res, nil
	}

	res.Texture = blockID
	res.Source = SourceFallback
	return res, nil
}

// chainLink pairs a loaded model with the path it came from.
type chainLink struct {
	path  string
	model *modelFile
}

// loadChain follows parent references starting from the model at path.
// The chain is returned leaf first. The walk stops at a model without a
// parent, a parent with no file, a revisited path, or MaxDepth links.
func (r *Resolver) loadChain(path string) ([]chainLink, error) {
	var chain []chainLink
	seen := make(map[string]bool)

	cur := path
	for depth := 0; depth < r.maxDepth() && !seen[cur]; depth++ {
		m, err := r.loadModel(cur)
		if err != nil {
			if len(chain) == 0 {
				return nil, err
			}
			// An unreadable ancestor truncates the chain; the leaf
			// already resolved, so work with what we have.
			break
		}
		seen[cur] = true
		chain = append(chain, chainLink{path: cur, model: m})

		if m.Parent == "" {
			break
		}
		next, ok := r.modelPath(m.Parent)
		if !ok {
			break
		}
		cur = next
	}
	return chain, nil
}

// loadModel reads and caches one model file.
func (r *Resolver) loadModel(path string) (*modelFile, error) {
	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[string]*modelFile)
	}
	if m, ok := r.cache[path]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}

	r.mu.Lock()
	r.cache[path] = &m
	r.mu.Unlock()
	return &m, nil
}

// modelPath maps a model reference ("minecraft:block/oak_planks") to a
// file under ModelsDir, reporting whether the file exists.
func (r *Resolver) modelPath(ref string) (string, bool) {
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[i+1:]
	}
	ref = strings.TrimPrefix(ref, "/")
	if ref == "" {
		return "", false
	}

	path := filepath.Join(r.ModelsDir, filepath.FromSlash(ref)+".json")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func (r *Resolver) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}

func (r *Resolver) maxHops() int {
	if r.MaxHops > 0 {
		return r.MaxHops
	}
	return DefaultMaxHops
}

// mergeSlots folds the chain's texture tables into one, walking root to
// leaf so that a slot redefined nearer the leaf wins.
func mergeSlots(chain []chainLink) map[string]string {
	slots := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for slot, value := range chain[i].model.Textures {
			slots[slot] = value
		}
	}
	return slots
}

// upFaceFromElements resolves the texture of the first geometry element
// with an explicit "up" face.
func upFaceFromElements(leaf *modelFile, slots map[string]string, maxHops int) (string, bool) {
	for _, el := range leaf.Elements {
		up, ok := el.Faces["up"]
		if !ok || up.Texture == "" {
			continue
		}
		if stem, ok := resolveSlot(slots, up.Texture, maxHops); ok {
			return stem, true
		}
	}
	return "", false
}

// topSlotOrder is the conventional slot preference for models without an
// explicit up face.
var topSlotOrder = [...]string{"top", "up", "end", "all"}

// upFaceFromSlots probes the merged texture table through the
// conventional top slots, returning the stem and the slot that matched.
func upFaceFromSlots(slots map[string]string, maxHops int) (string, string, bool) {
	for _, slot := range topSlotOrder {
		value, ok := slots[slot]
		if !ok {
			continue
		}
		if stem, ok := resolveSlot(slots, value, maxHops); ok {
			return stem, slot, true
		}
	}
	return "", "", false
}

// resolveSlot chases "#slot" aliases through the texture table until a
// direct value or the hop bound, then normalizes the value to a stem.
func resolveSlot(slots map[string]string, value string, maxHops int) (string, bool) {
	cur := value
	for hops := 0; strings.HasPrefix(cur, "#"); hops++ {
		if hops >= maxHops {
			return "", false
		}
		next, ok := slots[cur[1:]]
		if !ok {
			return "", false
		}
		cur = next
	}

	stem := normTexture(cur)
	if stem == "" {
		return "", false
	}
	return stem, true
}

// normTexture reduces a texture reference to a bare stem: the namespace
// and any directory prefix are dropped. Slot aliases pass through.
func normTexture(value string) string {
	if value == "" || strings.HasPrefix(value, "#") {
		return value
	}
	if i := strings.Index(value, ":"); i >= 0 {
		value = value[i+1:]
	}
	value = strings.TrimPrefix(value, "block/")
	if i := strings.LastIndex(value, "/"); i >= 0 {
		value = value[i+1:]
	}
	return value
}
