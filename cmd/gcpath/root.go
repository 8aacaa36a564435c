package main

import (
	"github.com/spf13/cobra"

	"gcpath/internal/version"
)

var (
	// useAssetAPI selects the bulk Cloud Asset strategy over per-folder
	// Resource Manager recursion
	useAssetAPI bool
	// noUseAssetAPI is the paired negative form; it wins over both the
	// positive flag and the config default
	noUseAssetAPI bool
	// debugFlag enables debug logging
	debugFlag bool
	// noCacheFlag bypasses the hierarchy cache entirely
	noCacheFlag bool
	// refreshFlag forces a fresh assembly and rewrites the cache
	refreshFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "gcpath",
	Short: "gcpath - Google Cloud resource hierarchy utility",
	Long: `gcpath maps Google Cloud resource names to human-readable hierarchy paths
and back. It assembles the organization/folder/project tree once, caches it
locally, and answers path lookups from the snapshot.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("gcpath version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&useAssetAPI, "use-asset-api", "u", true,
		"Use Cloud Asset API to load folders (faster) instead of Resource Manager (slower)")
	rootCmd.PersistentFlags().BoolVarP(&noUseAssetAPI, "no-use-asset-api", "U", false,
		"Load folders via Resource Manager instead of the Cloud Asset API")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false, "Bypass the hierarchy cache")
	rootCmd.PersistentFlags().BoolVar(&refreshFlag, "refresh", false, "Reload from the APIs and rewrite the cache")
}
