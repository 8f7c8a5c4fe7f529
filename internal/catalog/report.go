package catalog

// FaceProvenance records how one staged top-face image was chosen.
type FaceProvenance struct {
	ModelRef    string `json:"model_ref"`
	ModelPath   string `json:"model_path"`
	TextureStem string `json:"texture_stem"`
	Source      string `json:"source"`
	SrcPNG      string `json:"src_png"`
	OutPNG      string `json:"out_png"`
}

// MissingModel identifies a blockstate whose model reference resolved to
// no file.
type MissingModel struct {
	BlockID  string `json:"block_id"`
	ModelRef string `json:"model_ref"`
}

// MissingFaceTexture identifies a resolved texture stem with no image
// behind it.
type MissingFaceTexture struct {
	BlockID     string `json:"block_id"`
	TextureStem string `json:"texture_stem"`
	Source      string `json:"source"`
}

// Report enumerates everything a build skipped, per category, plus the
// provenance of every staged face. A block that could not be staged lands
// in exactly one category; fallback_used_id_png additionally lists blocks
// whose texture came from the id fallback, staged or not.
type Report struct {
	Written int `json:"written"`

	// Catalog-side skips: blocks that never got a record.
	CatalogMissingTexture []string `json:"catalog_missing_texture"`
	CatalogEmptyTexture   []string `json:"catalog_empty_texture"`

	// Tag and override diagnostics.
	TagCycles        []string `json:"tag_cycles"`
	OverrideWarnings []string `json:"override_warnings"`

	// Face-staging skips.
	SkippedNotInCatalog []string             `json:"skipped_not_in_blocks_json"`
	SkippedNotSafe      []string             `json:"skipped_not_mapart_safe"`
	MissingBlockstate   []string             `json:"missing_blockstate_model"`
	MissingModel        []MissingModel       `json:"missing_model_json"`
	MissingFaceTexture  []MissingFaceTexture `json:"missing_texture_png"`
	FallbackUsed        []string             `json:"fallback_used_id_png"`

	// Faces maps staged block ids to how their image was found.
	Faces map[string]FaceProvenance `json:"faces"`
}

func newReport() *Report {
	return &Report{
		CatalogMissingTexture: []string{},
		CatalogEmptyTexture:   []string{},
		TagCycles:             []string{},
		OverrideWarnings:      []string{},
		SkippedNotInCatalog:   []string{},
		SkippedNotSafe:        []string{},
		MissingBlockstate:     []string{},
		MissingModel:          []MissingModel{},
		MissingFaceTexture:    []MissingFaceTexture{},
		FallbackUsed:          []string{},
		Faces:                 map[string]FaceProvenance{},
	}
}

// skipCounts flattens the report's categories into counters for the
// build-metrics history.
func (r *Report) skipCounts() map[string]int {
	return map[string]int{
		"catalog_missing_texture":    len(r.CatalogMissingTexture),
		"catalog_empty_texture":      len(r.CatalogEmptyTexture),
		"skipped_not_in_blocks_json": len(r.SkippedNotInCatalog),
		"skipped_not_mapart_safe":    len(r.SkippedNotSafe),
		"missing_blockstate_model":   len(r.MissingBlockstate),
		"missing_model_json":         len(r.MissingModel),
		"missing_texture_png":        len(r.MissingFaceTexture),
		"fallback_used_id_png":       len(r.FallbackUsed),
	}
}
