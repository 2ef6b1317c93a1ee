package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/pdfscan"
)

func init() {
	rootCmd.AddCommand(scanPDFCmd)
}

var scanPDFCmd = &cobra.Command{
	Use:   "scan-pdf <file.pdf>...",
	Short: "Extract persistent identifiers from PDF files",
	Long: `Scan the first pages of each PDF for DOIs and arXiv identifiers, plus a
best-effort title. Use the output to build corpus records without hand
transcription.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScanPDF,
}

func runScanPDF(cmd *cobra.Command, args []string) error {
	var scans []*pdfscan.Scan
	for _, path := range args {
		scan, err := pdfscan.File(path)
		if err != nil {
			exitWithError(ExitDataError, "scanning %s: %v", path, err)
		}
		scans = append(scans, scan)
	}

	if humanOutput {
		for _, s := range scans {
			outputHuman("%s\n", s.Path)
			if s.Title != "" {
				outputHuman("  title: %s\n", truncateString(s.Title, 70))
			}
			for _, doi := range s.DOIs {
				outputHuman("  doi: %s\n", doi)
			}
			for _, id := range s.ArXivIDs {
				outputHuman("  arxiv: %s\n", id)
			}
		}
		return nil
	}
	return outputJSON(scans)
}
