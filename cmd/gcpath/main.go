package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Built after Execute so parsed flags (--debug) and the config
		// file shape the report.
		logger := newLogger(loadedConfig(nil))
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
