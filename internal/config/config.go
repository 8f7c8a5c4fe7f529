// Package config resolves where the pipeline reads assets from and where
// it writes site artifacts. Values are populated from .tessera.yaml,
// TESSERA_* env vars, and CLI flags; everything else falls back to the
// conventional project layout.
package config

import (
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a tessera invocation.
type Config struct {
	// AssetRoot is an unpacked game resource tree: blockstates, models,
	// textures, and tag data live below it.
	AssetRoot string `mapstructure:"asset_root"`

	// Namespace selects which asset namespace is cataloged.
	Namespace string `mapstructure:"namespace"`

	// SourceTextures is the flat directory of canonical per-block PNGs
	// the color analysis runs on.
	SourceTextures string `mapstructure:"source_textures"`

	// SiteDir is the static-site root that receives every artifact.
	SiteDir string `mapstructure:"site_dir"`

	// OverridesDir holds the manual curation tables.
	OverridesDir string `mapstructure:"overrides_dir"`

	// RulesFile optionally points at a TOML classification rules file.
	RulesFile string `mapstructure:"rules_file"`

	// Blocklist is the curated id list consumed by the sync command.
	Blocklist string `mapstructure:"blocklist"`

	// Workers bounds how many blocks are processed concurrently.
	Workers int `mapstructure:"workers"`

	// CompressCatalog also emits blocks.json.gz.
	CompressCatalog bool `mapstructure:"compress_catalog"`

	// StageFaces controls whether top-face textures are resolved and
	// copied during a build.
	StageFaces bool `mapstructure:"stage_faces"`

	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("asset_root", "minecraft_textures")
	viper.SetDefault("namespace", "minecraft")
	viper.SetDefault("source_textures", filepath.Join("minecraft_textures_source", "block"))
	viper.SetDefault("site_dir", "site")
	viper.SetDefault("overrides_dir", "overrides")
	viper.SetDefault("rules_file", "")
	viper.SetDefault("blocklist", "blocklist.txt")
	viper.SetDefault("workers", runtime.NumCPU())
	viper.SetDefault("compress_catalog", false)
	viper.SetDefault("stage_faces", true)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// Asset-tree locations, mirroring the unpacked resource layout.

func (c Config) BlockstatesDir() string {
	return filepath.Join(c.AssetRoot, "assets", c.Namespace, "blockstates")
}

func (c Config) ModelsDir() string {
	return filepath.Join(c.AssetRoot, "assets", c.Namespace, "models")
}

func (c Config) TexturesDir() string {
	return filepath.Join(c.AssetRoot, "assets", c.Namespace, "textures", "block")
}

func (c Config) TagsDir() string {
	return filepath.Join(c.AssetRoot, "data", c.Namespace, "tags", "block")
}

// Site artifact locations.

func (c Config) CatalogPath() string {
	return filepath.Join(c.SiteDir, "data", "blocks.json")
}

func (c Config) ReportPath() string {
	return filepath.Join(c.SiteDir, "data", "top_textures_report.json")
}

func (c Config) HistoryPath() string {
	return filepath.Join(c.SiteDir, "data", "build_metrics.toml")
}

func (c Config) FacesDir() string {
	return filepath.Join(c.SiteDir, "textures_top")
}

func (c Config) SyncedTexturesDir() string {
	return filepath.Join(c.SiteDir, "textures")
}

// Manual curation tables.

func (c Config) CreativeOverridesPath() string {
	return filepath.Join(c.OverridesDir, "creative_only_overrides.json")
}

func (c Config) FullBlockOverridesPath() string {
	return filepath.Join(c.OverridesDir, "full_block_overrides.json")
}
