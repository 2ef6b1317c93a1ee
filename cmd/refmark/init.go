package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a refmark repository in the current directory",
	Long:  `Create a .refmark directory with an empty corpus and default config.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if err := config.Init(cwd); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("Initialized refmark repository in %s\n", config.RefmarkPath(cwd))
		return nil
	}
	return outputJSON(StatusResponse{Status: "initialized", Path: config.RefmarkPath(cwd)})
}
