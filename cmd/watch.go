package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapsmith/tessera/internal/catalog"
	"github.com/mapsmith/tessera/internal/classify"
	"github.com/mapsmith/tessera/internal/config"
	"github.com/mapsmith/tessera/internal/ui"
	"github.com/mapsmith/tessera/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the catalog whenever the input trees change",
	Long: `Runs one build, then watches the asset tree, source textures, and
override tables. Each quiet burst of changes triggers a full rebuild.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("compress", false, "also write blocks.json.gz")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyFlagOverrides(cmd, &cfg)
	if v, _ := cmd.Flags().GetBool("compress"); v {
		cfg.CompressCatalog = true
	}

	rules, err := classify.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	printer := ui.New(cmd.ErrOrStderr())
	builder := &catalog.Builder{Config: cfg, Rules: rules, Logger: cmd.ErrOrStderr()}

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	// The first build validates the tree; watching an absent tree would
	// never fire.
	res, err := builder.Run(ctx)
	if err != nil {
		return err
	}
	printBuildSummary(cmd, cfg, res)

	w, err := watch.NewWatcher(
		cfg.BlockstatesDir(),
		cfg.ModelsDir(),
		cfg.TexturesDir(),
		cfg.TagsDir(),
		cfg.SourceTextures,
		cfg.OverridesDir,
	)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	printer.Infof("watching for asset changes (ctrl-c to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-w.Rebuilds:
			printer.Infof("%d changes, rebuilding", len(batch.Files))
			res, err := builder.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				printer.Errorf("build failed: %v", err)
				continue
			}
			printer.Successf("wrote %d blocks, staged %d faces in %s",
				len(res.Catalog), res.Report.Written,
				res.Metrics.Duration.Round(time.Millisecond))
		}
	}
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		printer.Infof("shutting down...")
		cancel()
	}()
	return ctx, cancel
}
