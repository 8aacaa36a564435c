package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"gcpath/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gcpath configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := loadedConfig(nil)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := config.DefaultConfig().Save(dir); err != nil {
		return err
	}
	fmt.Printf("Wrote %s/config.json\n", dir)
	return nil
}
