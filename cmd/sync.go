package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapsmith/tessera/internal/config"
	"github.com/mapsmith/tessera/internal/staging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy block-listed source textures into the site tree",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().String("blocklist", "", "block list file (default from config)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyFlagOverrides(cmd, &cfg)
	if v, _ := cmd.Flags().GetString("blocklist"); v != "" {
		cfg.Blocklist = v
	}

	ids, err := staging.ReadBlockList(cfg.Blocklist)
	if err != nil {
		return err
	}

	res, err := staging.Sync(cfg.SourceTextures, cfg.SyncedTexturesDir(), ids)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Copied %d textures into %s\n", res.Copied, cfg.SyncedTexturesDir())
	if len(res.Missing) == 0 {
		return nil
	}

	fmt.Fprintln(out, "\nMissing textures (check names / version):")
	for i, id := range res.Missing {
		if i == 50 {
			fmt.Fprintf(out, " ... and %d more\n", len(res.Missing)-50)
			break
		}
		fmt.Fprintf(out, " - %s\n", id)
	}
	return nil
}
