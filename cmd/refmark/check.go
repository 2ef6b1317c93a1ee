package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/bibindex"
	"github.com/matsen/refmark/internal/validate"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify corpus integrity",
	Long: `Run the acceptance gate over every corpus record and report duplicate
identifiers. Checks are the same ones resolution applies, so a clean
check means resolve will not fail on corpus quality.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status     string              `json:"status"`
	Records    int                 `json:"records"`
	Issues     []validate.Issue    `json:"issues,omitempty"`
	Duplicates []bibindex.Conflict `json:"duplicates,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	records := mustLoadRecords(repoRoot)

	var issues []validate.Issue
	for i := range records {
		for _, issue := range validate.CheckRecord(&records[i]) {
			issue.Key = records[i].Key
			issues = append(issues, issue)
		}
	}

	idx := bibindex.Build(records)

	result := CheckResult{
		Status:     "ok",
		Records:    len(records),
		Issues:     issues,
		Duplicates: idx.Conflicts(),
	}
	if validate.HasCritical(issues) {
		result.Status = "failed"
	}

	if humanOutput {
		outputHuman("%d records checked\n", result.Records)
		for _, issue := range issues {
			outputHuman("  [%s] %s: %s\n", issue.Severity, issue.Key, issue.Reason)
		}
		for _, d := range result.Duplicates {
			outputHuman("  [duplicate] %s %q: %s shadowed by %s\n", d.Kind, d.Value, d.LoserKey, d.WinnerKey)
		}
	} else {
		outputJSON(result)
	}

	if result.Status == "failed" {
		os.Exit(ExitDataError)
	}
	return nil
}
