package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/export"
	"github.com/matsen/refmark/internal/reference"
	"github.com/matsen/refmark/internal/validate"
)

var emitOut string

func init() {
	emitCmd.Flags().StringVarP(&emitOut, "out", "o", "", "Write the bibliography here (default: stdout)")
	rootCmd.AddCommand(emitCmd)
}

var emitCmd = &cobra.Command{
	Use:   "emit [key...]",
	Short: "Emit BibTeX for corpus records",
	Long: `Serialize corpus records as BibTeX, validated the same way resolution
validates its bibliography. With no arguments, every record is emitted;
otherwise only the named keys.`,
	RunE: runEmit,
}

// EmitResponse is the JSON response for the emit command.
type EmitResponse struct {
	Status       string           `json:"status"`
	Entries      int              `json:"entries"`
	Bibliography string           `json:"bibliography,omitempty"`
	Issues       []validate.Issue `json:"issues,omitempty"`
}

func runEmit(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	records := mustLoadRecords(repoRoot)

	selected := records
	if len(args) > 0 {
		wanted := make(map[string]bool, len(args))
		for _, key := range args {
			wanted[key] = true
		}
		selected = nil
		for _, rec := range records {
			if wanted[rec.Key] {
				selected = append(selected, rec)
				delete(wanted, rec.Key)
			}
		}
		for key := range wanted {
			exitWithError(ExitDataError, "no record with key %q", key)
		}
	}

	bibliography := export.Bibliography(selected)

	issues := validate.CheckBibliography(bibliography)
	if validate.HasCritical(issues) {
		if humanOutput {
			for _, issue := range issues {
				outputHuman("  [%s] %s: %s\n", issue.Severity, issue.Key, issue.Reason)
			}
		} else {
			outputJSON(EmitResponse{Status: "failed", Entries: countEntries(selected), Issues: issues})
		}
		os.Exit(ExitDataError)
	}

	if emitOut != "" {
		if err := os.WriteFile(emitOut, []byte(bibliography), 0644); err != nil {
			exitWithError(ExitError, "writing bibliography: %v", err)
		}
		if humanOutput {
			outputHuman("Wrote %d entries to %s\n", countEntries(selected), emitOut)
			return nil
		}
		return outputJSON(EmitResponse{Status: "emitted", Entries: countEntries(selected)})
	}

	if humanOutput {
		outputHuman("%s", bibliography)
		return nil
	}
	return outputJSON(EmitResponse{
		Status:       "emitted",
		Entries:      countEntries(selected),
		Bibliography: bibliography,
		Issues:       issues,
	})
}

func countEntries(records []reference.Record) int {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.Key] = true
	}
	return len(seen)
}
