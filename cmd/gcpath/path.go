package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gcpath/internal/gcp"
	"gcpath/internal/loader"
)

var pathCmd = &cobra.Command{
	Use:   "path <resource-name>...",
	Short: "Resolve resource names to display paths",
	Long: `Resolve one or more resource names to display paths by walking parent
pointers directly, without assembling the whole hierarchy.

Examples:
  gcpath path folders/123456
  gcpath path projects/my-project organizations/1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPath,
}

func init() {
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	ctx := newContext()
	logger := newLogger(loadedConfig(nil))

	clients, err := gcp.NewClients(ctx)
	if err != nil {
		return err
	}
	defer clients.Close()

	for _, resourceName := range args {
		path, err := loader.ResolveAncestry(ctx, clients, resourceName, logger)
		if err != nil {
			// With several names, one failure should not block the rest.
			if len(args) > 1 {
				fmt.Fprintf(os.Stderr, "Error resolving %s: %v\n", resourceName, err)
				continue
			}
			return err
		}
		fmt.Println(path)
	}
	return nil
}
