package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapsmith/tessera/internal/catalog"
	"github.com/mapsmith/tessera/internal/classify"
	"github.com/mapsmith/tessera/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the block catalog, top-face tiles, and reports",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().Bool("compress", false, "also write blocks.json.gz")
	buildCmd.Flags().Bool("stage-faces", true, "resolve and stage top-face textures")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyFlagOverrides(cmd, &cfg)
	if v, _ := cmd.Flags().GetBool("compress"); v {
		cfg.CompressCatalog = true
	}
	if cmd.Flags().Changed("stage-faces") {
		cfg.StageFaces, _ = cmd.Flags().GetBool("stage-faces")
	}

	rules, err := classify.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	builder := &catalog.Builder{Config: cfg, Rules: rules, Logger: cmd.ErrOrStderr()}
	res, err := builder.Run(cmd.Context())
	if err != nil {
		return err
	}

	printBuildSummary(cmd, cfg, res)
	return nil
}

func printBuildSummary(cmd *cobra.Command, cfg config.Config, res *catalog.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d blocks -> %s\n", len(res.Catalog), cfg.CatalogPath())
	if cfg.StageFaces {
		fmt.Fprintf(out, "Staged %d top faces -> %s\n", res.Report.Written, cfg.FacesDir())
	}
	fmt.Fprintf(out, "Report -> %s\n", cfg.ReportPath())
	fmt.Fprintf(out, "Finished in %s\n", res.Metrics.Duration.Round(time.Millisecond))

	if !cfg.Verbose {
		return
	}
	keys := make([]string, 0, len(res.Metrics.Skips))
	for k := range res.Metrics.Skips {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if n := res.Metrics.Skips[k]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", k, n)
		}
	}
}
