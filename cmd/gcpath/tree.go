package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gcpath/internal/render"
)

var (
	treeLevel   int
	treeShowIDs bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [organization...]",
	Short: "Display the resource hierarchy as a tree",
	Long: `Display the resource hierarchy in a tree format.

Examples:
  gcpath tree
  gcpath tree example.com
  gcpath tree --level 2
  gcpath tree --ids`,
	RunE: runTree,
}

func init() {
	treeCmd.Flags().IntVarP(&treeLevel, "level", "L", 0, "Max display depth of the tree (0 for unlimited)")
	treeCmd.Flags().BoolVarP(&treeShowIDs, "ids", "i", false, "Show resource names in the tree")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	logger := newLogger(loadedConfig(nil))

	h, err := loadHierarchy(newContext(), args, logger)
	if err != nil {
		return err
	}

	fmt.Print(render.Tree(h, render.TreeOptions{
		Level:   treeLevel,
		ShowIDs: treeShowIDs,
	}))
	return nil
}
