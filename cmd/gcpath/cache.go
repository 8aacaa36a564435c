package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local hierarchy cache",
}

var cacheInfoFormat string

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache status",
	RunE:  runCacheInfo,
}

// cacheInfoCLI is the machine-readable cache status shape
type cacheInfoCLI struct {
	Path          string `json:"path" yaml:"path"`
	Exists        bool   `json:"exists" yaml:"exists"`
	Fresh         bool   `json:"fresh" yaml:"fresh"`
	Version       int    `json:"version,omitempty" yaml:"version,omitempty"`
	Timestamp     string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	AgeSeconds    int64  `json:"ageSeconds,omitempty" yaml:"ageSeconds,omitempty"`
	SizeBytes     int64  `json:"sizeBytes,omitempty" yaml:"sizeBytes,omitempty"`
	Organizations int    `json:"organizations" yaml:"organizations"`
	Folders       int    `json:"folders" yaml:"folders"`
	Projects      int    `json:"projects" yaml:"projects"`
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached hierarchy snapshot",
	RunE:  runCacheClear,
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the cache from the APIs",
	RunE:  runCacheRefresh,
}

func init() {
	cacheInfoCmd.Flags().StringVar(&cacheInfoFormat, "format", "text", "Output format (text, json, yaml)")
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheRefreshCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig(nil)
	logger := newLogger(cfg)

	store := cacheStore(cfg, logger)
	if store == nil {
		return fmt.Errorf("cannot determine cache location")
	}

	info := store.Info()

	if cacheInfoFormat != string(TextFormat) {
		row := cacheInfoCLI{
			Path:          info.Path,
			Exists:        info.Exists,
			Fresh:         info.Fresh,
			Version:       info.Version,
			SizeBytes:     info.SizeBytes,
			Organizations: info.Organizations,
			Folders:       info.Folders,
			Projects:      info.Projects,
		}
		if !info.Timestamp.IsZero() {
			row.Timestamp = info.Timestamp.UTC().Format(time.RFC3339)
			row.AgeSeconds = int64(info.Age / time.Second)
		}
		out, err := encodeOutput(row, OutputFormat(cacheInfoFormat))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Printf("Path:     %s\n", info.Path)
	if !info.Exists {
		fmt.Println("Status:   absent")
		return nil
	}

	status := "stale"
	if info.Fresh {
		status = "fresh"
	}
	fmt.Printf("Status:   %s\n", status)
	fmt.Printf("Version:  %d\n", info.Version)
	fmt.Printf("Written:  %s (%s ago)\n", info.Timestamp.Format("2006-01-02 15:04:05 MST"), info.Age.Round(time.Second))
	fmt.Printf("Size:     %d bytes\n", info.SizeBytes)
	fmt.Printf("Contents: %d organizations, %d folders, %d projects\n",
		info.Organizations, info.Folders, info.Projects)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig(nil)
	logger := newLogger(cfg)

	store := cacheStore(cfg, logger)
	if store == nil {
		return fmt.Errorf("cannot determine cache location")
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}

func runCacheRefresh(cmd *cobra.Command, args []string) error {
	logger := newLogger(loadedConfig(nil))

	refreshFlag = true
	if _, err := loadHierarchy(newContext(), nil, logger); err != nil {
		return err
	}
	fmt.Println("Cache refreshed.")
	return nil
}
