package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/bibindex"
	"github.com/matsen/refmark/internal/config"
	"github.com/matsen/refmark/internal/corpus"
	"github.com/matsen/refmark/internal/ident"
)

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatsCmd)
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite lookup cache",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the SQLite cache from records.jsonl",
	RunE:  runIndexRebuild,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show identifier coverage and duplicate identifiers",
	RunE:  runIndexStats,
}

// RebuildResponse is the JSON response for index rebuild.
type RebuildResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Path    string `json:"path"`
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	cache, err := corpus.OpenCache(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	defer cache.Close()

	n, err := cache.RebuildFromJSONL(config.RecordsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding cache: %v", err)
	}

	if humanOutput {
		outputHuman("Rebuilt cache with %d records at %s\n", n, config.DBPath(repoRoot))
		return nil
	}
	return outputJSON(RebuildResponse{
		Status:  "rebuilt",
		Records: n,
		Path:    config.DBPath(repoRoot),
	})
}

// IndexStats is the JSON response for index stats.
type IndexStats struct {
	Records    int                 `json:"records"`
	ByKind     map[ident.Kind]int  `json:"by_kind"`
	Duplicates []bibindex.Conflict `json:"duplicates,omitempty"`
}

func runIndexStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	records := mustLoadRecords(repoRoot)

	idx := bibindex.Build(records)
	stats := IndexStats{
		Records:    len(records),
		ByKind:     idx.Size(),
		Duplicates: idx.Conflicts(),
	}

	if humanOutput {
		outputHuman("%d records\n", stats.Records)
		for _, kind := range []ident.Kind{ident.KindDOI, ident.KindArXiv, ident.KindISBN, ident.KindPMID, ident.KindURL} {
			outputHuman("  %s: %d\n", kind, stats.ByKind[kind])
		}
		for _, d := range stats.Duplicates {
			outputHuman("  duplicate %s %q: %s shadowed by %s\n", d.Kind, d.Value, d.LoserKey, d.WinnerKey)
		}
		return nil
	}
	return outputJSON(stats)
}
