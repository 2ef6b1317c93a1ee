// Package main provides the refmark CLI entry point.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/config"
	"github.com/matsen/refmark/internal/corpus"
	"github.com/matsen/refmark/internal/reference"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refmark",
	Short: "Citation resolution for markdown manuscripts",
	Long: `refmark resolves inline reference links in markdown documents against a
bibliographic corpus and replaces them with citation markers.

Core features:
  - Identifier-first matching (DOI, arXiv, ISBN, PMID, then plain URL)
  - Three validation gates between the corpus and the emitted bibliography
  - Deterministic BibTeX output for every cited record
  - Optional metadata recovery for citations missing from the corpus

Records are stored in git-versionable JSONL with ephemeral SQLite for lookups.
All commands output JSON by default for agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version

	// Logs go to stderr so stdout stays parseable JSON.
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if os.Getenv("REFMARK_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
}

// mustFindRepository finds the repository from the working directory,
// exits on error. Returns the repository root path.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	repoRoot, err := config.FindRepository(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'refmark init' to create a repository here.", err)
	}
	return repoRoot
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadRecords reads the JSONL corpus, exits on error.
func mustLoadRecords(repoRoot string) []reference.Record {
	records, err := corpus.ReadAll(config.RecordsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading records: %v", err)
	}
	return records
}
