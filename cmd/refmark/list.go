package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/reference"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus records",
	RunE:  runList,
}

// ListResponse is the JSON response for the list command.
type ListResponse struct {
	Records []reference.Record `json:"records"`
	Count   int                `json:"count"`
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	records := mustLoadRecords(repoRoot)

	if humanOutput {
		for _, rec := range records {
			outputHuman("%s  %s\n", rec.Key, truncateString(rec.Title, 60))
			if len(rec.Authors) > 0 || rec.Published.Year > 0 {
				outputHuman("  %s (%d)\n", formatAuthorsShort(rec.Authors, 3), rec.Published.Year)
			}
		}
		return nil
	}
	return outputJSON(ListResponse{Records: records, Count: len(records)})
}
