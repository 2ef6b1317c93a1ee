package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/config"
	"github.com/matsen/refmark/internal/corpus"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key-or-identifier>",
	Short: "Look up a corpus record by key, identifier, or URL",
	Long: `Look up a single record in the SQLite cache by corpus key, DOI, arXiv ID,
ISBN, PMID, or URL. The cache is rebuilt from records.jsonl when empty;
run 'refmark index rebuild' after editing the corpus by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	cache, err := corpus.OpenCache(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	defer cache.Close()

	n, err := cache.Count()
	if err != nil {
		exitWithError(ExitError, "reading cache: %v", err)
	}
	if n == 0 {
		if _, err := cache.RebuildFromJSONL(config.RecordsPath(repoRoot)); err != nil {
			exitWithError(ExitDataError, "rebuilding cache: %v", err)
		}
	}

	rec, err := cache.Lookup(args[0])
	if err != nil {
		exitWithError(ExitError, "looking up record: %v", err)
	}
	if rec == nil {
		exitWithError(ExitDataError, "no record matches %q", args[0])
	}

	if humanOutput {
		outputHuman("%s  %s\n", rec.Key, truncateString(rec.Title, 70))
		if len(rec.Authors) > 0 || rec.Published.Year > 0 {
			outputHuman("  %s (%d)\n", formatAuthorsShort(rec.Authors, 3), rec.Published.Year)
		}
		if rec.DOI != "" {
			outputHuman("  doi: %s\n", rec.DOI)
		}
		if rec.ArXivID != "" {
			outputHuman("  arxiv: %s\n", rec.ArXivID)
		}
		return nil
	}
	return outputJSON(rec)
}
