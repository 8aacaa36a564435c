package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gcpath/internal/render"
)

var (
	diagramFormat  string
	diagramLevel   int
	diagramShowIDs bool
)

var diagramCmd = &cobra.Command{
	Use:   "diagram [organization...]",
	Short: "Generate a diagram of the resource hierarchy",
	Long: `Generate hierarchy diagram source for Mermaid or D2.

Examples:
  gcpath diagram
  gcpath diagram --format d2
  gcpath diagram --level 2 --ids`,
	RunE: runDiagram,
}

func init() {
	diagramCmd.Flags().StringVarP(&diagramFormat, "format", "f", render.FormatMermaid, "Diagram format (mermaid, d2)")
	diagramCmd.Flags().IntVarP(&diagramLevel, "level", "L", 0, "Max depth to include (0 for unlimited)")
	diagramCmd.Flags().BoolVarP(&diagramShowIDs, "ids", "i", false, "Include resource names in node labels")
	rootCmd.AddCommand(diagramCmd)
}

func runDiagram(cmd *cobra.Command, args []string) error {
	logger := newLogger(loadedConfig(nil))

	h, err := loadHierarchy(newContext(), args, logger)
	if err != nil {
		return err
	}

	out, err := render.Diagram(h, render.DiagramOptions{
		Format:  diagramFormat,
		Level:   diagramLevel,
		ShowIDs: diagramShowIDs,
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
