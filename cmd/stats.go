package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapsmith/tessera/internal/catalog"
	"github.com/mapsmith/tessera/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show metrics from recent catalog builds",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyFlagOverrides(cmd, &cfg)

	current, history, err := catalog.LoadHistory(cfg.HistoryPath())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if current == nil {
		fmt.Fprintf(out, "no build history at %s\n", cfg.HistoryPath())
		return nil
	}

	fmt.Fprintf(out, "Last build: %s\n", current.CompletedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  asset root: %s\n", current.AssetRoot)
	fmt.Fprintf(out, "  duration:   %s\n", current.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  items:      %d\n", current.Items)
	fmt.Fprintf(out, "  written:    %d\n", current.Written)
	fmt.Fprintf(out, "  staged:     %d\n", current.Staged)

	skips := make([]string, 0, len(current.Skips))
	for k := range current.Skips {
		skips = append(skips, k)
	}
	sort.Strings(skips)
	for _, k := range skips {
		if n := current.Skips[k]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", k, n)
		}
	}

	if len(history) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nPrevious %d builds:\n", len(history))
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		fmt.Fprintf(out, "  %s  items=%d written=%d staged=%d in %s\n",
			h.StartedAt.Format(time.RFC3339), h.Items, h.Written, h.Staged,
			h.Duration.Round(time.Millisecond))
	}
	return nil
}
