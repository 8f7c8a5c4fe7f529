package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mapsmith/tessera/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tessera",
	Short: "Map-art block catalog builder",
	Long: `Tessera turns an unpacked game asset tree into the artifacts behind a
map-art planning site: a block catalog with perceptual color data and
placement flags, the true top-face texture of every safe block, and a
build report for everything that could not be resolved.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .tessera.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("asset-root", "", "unpacked asset tree to read")
	rootCmd.PersistentFlags().String("site-dir", "", "site directory receiving the artifacts")
	rootCmd.PersistentFlags().Int("workers", 0, "concurrent block workers")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".tessera")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TESSERA")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// applyFlagOverrides applies CLI flag values to the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("asset-root"); v != "" {
		cfg.AssetRoot = v
	}
	if v, _ := cmd.Flags().GetString("site-dir"); v != "" {
		cfg.SiteDir = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
}
