package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gcpath/internal/render"
)

var (
	lsLong      bool
	lsRecursive bool
	lsFormat    string
)

var lsCmd = &cobra.Command{
	Use:   "ls [organization...]",
	Short: "List folders and projects in your organizations",
	Long: `List all folders and projects in your organizations as display paths.

Examples:
  gcpath ls
  gcpath ls example.com
  gcpath ls --long
  gcpath ls --format json
  gcpath ls --format yaml
  gcpath ls --recursive=false`,
	RunE: runLs,
}

// lsItemCLI is one listing row for machine-readable output
type lsItemCLI struct {
	Path         string `json:"path" yaml:"path"`
	ResourceName string `json:"resourceName" yaml:"resourceName"`
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Show resource names along with paths")
	lsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "R", true, "List resources recursively")
	lsCmd.Flags().StringVar(&lsFormat, "format", "text", "Output format (text, json, yaml)")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	logger := newLogger(loadedConfig(nil))

	h, err := loadHierarchy(newContext(), args, logger)
	if err != nil {
		return err
	}

	items := render.Listing(h, lsRecursive)

	if lsFormat != string(TextFormat) {
		rows := make([]lsItemCLI, 0, len(items))
		for _, item := range items {
			rows = append(rows, lsItemCLI{Path: item.Path, ResourceName: item.ResourceName})
		}
		out, err := encodeOutput(rows, OutputFormat(lsFormat))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No organizations or projects found accessible to your account.")
		fmt.Println("Hint: projects outside any organization are shown with the //_ prefix.")
		return nil
	}

	for _, item := range items {
		if lsLong {
			fmt.Printf("%-60s %s\n", item.Path, item.ResourceName)
		} else {
			fmt.Println(item.Path)
		}
	}
	return nil
}
