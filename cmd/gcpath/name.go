package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var nameIDOnly bool

var nameCmd = &cobra.Command{
	Use:   "name <path>...",
	Short: "Resolve display paths to resource names",
	Long: `Resolve one or more display paths to their resource names.

Examples:
  gcpath name //example.com/Engineering
  gcpath name //example.com/Engineering/my-project --id
  gcpath name //_/orphan-project`,
	Args: cobra.MinimumNArgs(1),
	RunE: runName,
}

func init() {
	nameCmd.Flags().BoolVar(&nameIDOnly, "id", false, "Print only the numeric resource id")
	rootCmd.AddCommand(nameCmd)
}

func runName(cmd *cobra.Command, args []string) error {
	logger := newLogger(loadedConfig(nil))

	h, err := loadHierarchy(newContext(), nil, logger)
	if err != nil {
		return err
	}

	for _, path := range args {
		resourceName, err := h.GetResourceName(path)
		if err != nil {
			return err
		}
		if nameIDOnly {
			resourceName = resourceName[strings.LastIndex(resourceName, "/")+1:]
		}
		fmt.Println(resourceName)
	}
	return nil
}
