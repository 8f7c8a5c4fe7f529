package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mapsmith/tessera/internal/classify"
	"github.com/mapsmith/tessera/internal/config"
	"github.com/mapsmith/tessera/internal/models"
	"github.com/mapsmith/tessera/internal/tags"
	"github.com/mapsmith/tessera/internal/texture"
)

// ErrMissingInput marks a required input directory that does not exist.
// Unlike per-block problems, this fails the whole build.
var ErrMissingInput = errors.New("required input missing")

// Builder runs the full catalog pipeline over one asset tree. Per-block
// problems are recorded in the report and never abort the build; only
// absent input trees, malformed shared files (tags, overrides, rules),
// and output write failures do.
type Builder struct {
	Config config.Config
	Rules  classify.Rules

	// Logger receives warning and progress lines. Nil means os.Stderr.
	Logger io.Writer
}

// Result carries everything one build produced.
type Result struct {
	Catalog Catalog
	Report  *Report
	Metrics BuildMetrics
}

func (b *Builder) logf(format string, args ...any) {
	w := b.Logger
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// Run executes the pipeline: enumerate blocks, analyze and classify each
// one, stage top-face textures, and emit the catalog, report, and metrics
// history atomically.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	cfg := b.Config
	rules := b.Rules
	if rules.NoiseThreshold == 0 {
		rules = classify.DefaultRules()
	}

	required := []string{cfg.BlockstatesDir(), cfg.SourceTextures}
	if cfg.StageFaces {
		required = append(required, cfg.ModelsDir(), cfg.TexturesDir())
	}
	for _, dir := range required {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, dir)
		}
	}

	ids, err := listBlockIDs(cfg.BlockstatesDir())
	if err != nil {
		return nil, err
	}

	creative, err := loadOverrides(cfg.CreativeOverridesPath())
	if err != nil {
		return nil, err
	}
	fullBlock, err := loadOverrides(cfg.FullBlockOverridesPath())
	if err != nil {
		return nil, err
	}

	report := newReport()

	graph, err := tags.Load(cfg.TagsDir(), cfg.Namespace)
	if err != nil {
		if !errors.Is(err, tags.ErrNoTagTree) {
			return nil, err
		}
		b.logf("warning: %v (continuing with no official tags)", err)
	}
	// Expand every tag up front, single-threaded. Workers below only
	// read the inverted map, so the graph needs no locking.
	graph.ResolveAll()
	tagsByBlock := graph.Invert()
	report.TagCycles = graph.Cycles()
	for _, cyc := range report.TagCycles {
		b.logf("warning: tag cycle through %s", cyc)
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	report.OverrideWarnings = checkOverrideKeys(known, ids, []overrideTable{
		{name: "creative_only_overrides", keys: creative},
		{name: "full_block_overrides", keys: fullBlock},
	})
	for _, w := range report.OverrideWarnings {
		b.logf("warning: %s", w)
	}

	// Phase 1: one record per block. Each worker writes only its own
	// index, so the slice needs no locking; folding back in id order
	// keeps the report deterministic regardless of completion order.
	deriver := &classify.Deriver{Rules: rules, Namespace: cfg.Namespace}
	outcomes := make([]itemOutcome, len(ids))
	b.forEach(ctx, ids, func(i int, id string) error {
		outcomes[i] = b.buildRecord(id, tagsByBlock[id], deriver, creative, fullBlock)
		return nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cat := make(Catalog, len(ids))
	for i, id := range ids {
		switch oc := outcomes[i]; oc.status {
		case statusOK:
			cat[id] = oc.record
		case statusMissingTexture:
			report.CatalogMissingTexture = append(report.CatalogMissingTexture, id)
		case statusEmptyTexture:
			report.CatalogEmptyTexture = append(report.CatalogEmptyTexture, id)
		}
	}

	// Phase 2: stage the true top-face texture of every safe block.
	if cfg.StageFaces {
		if err := os.MkdirAll(cfg.FacesDir(), 0o755); err != nil {
			return nil, err
		}
		resolver := models.NewResolver(cfg.BlockstatesDir(), cfg.ModelsDir())
		faces := make([]faceOutcome, len(ids))
		err := b.forEach(ctx, ids, func(i int, id string) error {
			fo, err := b.stageFace(resolver, cat, id)
			faces[i] = fo
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, id := range ids {
			foldFace(report, id, faces[i])
		}
	}

	if err := WriteCatalog(cfg.CatalogPath(), cat, cfg.CompressCatalog); err != nil {
		return nil, err
	}
	if err := WriteJSON(cfg.ReportPath(), report); err != nil {
		return nil, err
	}

	completed := time.Now()
	metrics := BuildMetrics{
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
		AssetRoot:   cfg.AssetRoot,
		Items:       len(ids),
		Written:     len(cat),
		Staged:      report.Written,
		Skips:       report.skipCounts(),
	}
	if err := SaveHistory(cfg.HistoryPath(), metrics); err != nil {
		b.logf("warning: saving build metrics: %v", err)
	}

	return &Result{Catalog: cat, Report: report, Metrics: metrics}, nil
}

// forEach runs fn over ids with at most Workers goroutines in flight.
// The first non-nil error wins; remaining ids still run.
func (b *Builder) forEach(ctx context.Context, ids []string, fn func(i int, id string) error) error {
	workers := b.Config.Workers
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(i, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i, id)
	}
	wg.Wait()
	return firstErr
}

type itemStatus int

const (
	statusOK itemStatus = iota
	statusMissingTexture
	statusEmptyTexture
)

type itemOutcome struct {
	status itemStatus
	record Record
}

// buildRecord analyzes one block's canonical texture and derives its
// catalog record. Problems become skip statuses, never errors.
func (b *Builder) buildRecord(id string, official []string, deriver *classify.Deriver, creative, fullBlock map[string]bool) itemOutcome {
	sum, err := texture.AnalyzeFile(filepath.Join(b.Config.SourceTextures, id+".png"))
	if err != nil {
		return itemOutcome{status: statusMissingTexture}
	}
	if sum.Samples == 0 {
		return itemOutcome{status: statusEmptyTexture}
	}

	if official == nil {
		official = []string{}
	}
	flags := deriver.Derive(id, official)
	if forced, ok := fullBlock[id]; ok {
		classify.ApplyFullBlockOverride(flags, forced)
	}

	noise := round3(sum.Noise)
	return itemOutcome{
		status: statusOK,
		record: Record{
			Name:   prettyName(id),
			Img:    "textures/" + id + ".png",
			Swatch: sum.Hex,
			AvgLab: [3]float64{round3(sum.Mean.L), round3(sum.Mean.A), round3(sum.Mean.B)},
			Noise:  noise,
			Tags: RecordTags{
				Transparent:  sum.Transparent,
				Noisy:        noise > deriver.Rules.NoiseThreshold,
				CreativeOnly: creative[id],
			},
			OfficialTags: official,
			TagFlags:     flags,
		},
	}
}

type faceStatus int

const (
	faceStaged faceStatus = iota
	faceNotInCatalog
	faceNotSafe
	faceNoBlockstate
	faceNoModelFile
	faceNoTexture
)

type faceOutcome struct {
	status     faceStatus
	fallback   bool
	modelRef   string
	stem       string
	source     string
	provenance FaceProvenance
}

// stageFace resolves one block's top-face texture and copies it into the
// faces directory. Resolution problems become skip statuses; only a copy
// that fails for reasons other than a missing source is an error.
func (b *Builder) stageFace(resolver *models.Resolver, cat Catalog, id string) (faceOutcome, error) {
	rec, ok := cat[id]
	if !ok {
		return faceOutcome{status: faceNotInCatalog}, nil
	}
	if !MapartSafe(rec) {
		return faceOutcome{status: faceNotSafe}, nil
	}

	res, err := resolver.ResolveTopFace(id)
	switch {
	case errors.Is(err, models.ErrNoBlockstate), errors.Is(err, models.ErrNoModelRef):
		return faceOutcome{status: faceNoBlockstate}, nil
	case err != nil:
		// Missing file behind the reference, or unreadable model data.
		return faceOutcome{status: faceNoModelFile, modelRef: res.ModelRef}, nil
	}

	fallback := res.Source == models.SourceFallback
	src := filepath.Join(b.Config.TexturesDir(), res.Texture+".png")
	out := filepath.Join(b.Config.FacesDir(), id+".png")

	if _, err := os.Stat(src); err != nil {
		return faceOutcome{status: faceNoTexture, stem: res.Texture, source: res.Source, fallback: fallback}, nil
	}
	if err := copyFile(src, out); err != nil {
		return faceOutcome{}, fmt.Errorf("staging %s: %w", id, err)
	}

	return faceOutcome{
		status:   faceStaged,
		fallback: fallback,
		provenance: FaceProvenance{
			ModelRef:    res.ModelRef,
			ModelPath:   res.ModelPath,
			TextureStem: res.Texture,
			Source:      res.Source,
			SrcPNG:      src,
			OutPNG:      out,
		},
	}, nil
}

// foldFace merges one block's staging outcome into the report.
func foldFace(report *Report, id string, fo faceOutcome) {
	switch fo.status {
	case faceStaged:
		report.Written++
		report.Faces[id] = fo.provenance
	case faceNotInCatalog:
		report.SkippedNotInCatalog = append(report.SkippedNotInCatalog, id)
	case faceNotSafe:
		report.SkippedNotSafe = append(report.SkippedNotSafe, id)
	case faceNoBlockstate:
		report.MissingBlockstate = append(report.MissingBlockstate, id)
	case faceNoModelFile:
		report.MissingModel = append(report.MissingModel, MissingModel{BlockID: id, ModelRef: fo.modelRef})
	case faceNoTexture:
		report.MissingFaceTexture = append(report.MissingFaceTexture, MissingFaceTexture{
			BlockID:     id,
			TextureStem: fo.stem,
			Source:      fo.source,
		})
	}
	if fo.fallback {
		report.FallbackUsed = append(report.FallbackUsed, id)
	}
}

// listBlockIDs enumerates the *.json stems under the blockstates
// directory, sorted. This is the block universe for a build.
func listBlockIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
