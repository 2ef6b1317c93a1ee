package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/config"
	"github.com/matsen/refmark/internal/corpus"
	"github.com/matsen/refmark/internal/enrich"
	"github.com/matsen/refmark/internal/ident"
	"github.com/matsen/refmark/internal/reference"
	"github.com/matsen/refmark/internal/validate"
)

var (
	addDOI    string
	addTitle  string
	addAuthor []string
	addYear   int
	addVenue  string
	addURL    string
)

func init() {
	addCmd.Flags().StringVar(&addDOI, "doi", "", "DOI to fetch metadata for")
	addCmd.Flags().StringVar(&addTitle, "title", "", "Record title")
	addCmd.Flags().StringArrayVar(&addAuthor, "author", nil, "Author name (repeatable)")
	addCmd.Flags().IntVar(&addYear, "year", 0, "Publication year")
	addCmd.Flags().StringVar(&addVenue, "venue", "", "Journal, conference, or publisher")
	addCmd.Flags().StringVar(&addURL, "url", "", "Record URL")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a record to the corpus",
	Long: `Add a record to the corpus with a derived citekey. With --doi and no
explicit fields, metadata is fetched from Crossref. The record must pass
the same acceptance checks resolution applies.`,
	RunE: runAdd,
}

// AddResponse is the JSON response for the add command.
type AddResponse struct {
	Status string           `json:"status"`
	Key    string           `json:"key,omitempty"`
	Issues []validate.Issue `json:"issues,omitempty"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	rec := reference.Record{
		Type:      reference.TypeArticle,
		Title:     addTitle,
		Venue:     addVenue,
		URL:       addURL,
		Published: reference.PublicationDate{Year: addYear},
	}
	for _, name := range addAuthor {
		rec.Authors = append(rec.Authors, reference.SplitName(name))
	}

	if addDOI != "" {
		doi, ok := ident.NormalizeDOI(addDOI)
		if !ok {
			exitWithError(ExitDataError, "invalid DOI: %s", addDOI)
		}
		rec.DOI = doi

		if rec.Title == "" {
			godotenv.Load()

			var clientOpts []enrich.CrossrefOption
			if cfg.CrossrefMailto != "" {
				clientOpts = append(clientOpts, enrich.WithMailto(cfg.CrossrefMailto))
			}
			client := enrich.NewCrossrefClient(clientOpts...)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			meta, err := client.Enrich(ctx, ident.Identifier{Kind: ident.KindDOI, Value: doi})
			if err != nil {
				exitWithError(ExitDataError, "fetching metadata for %s: %v", doi, err)
			}
			rec = meta.ToRecord(ident.Identifier{Kind: ident.KindDOI, Value: doi})
		}
	}

	issues := validate.CheckRecord(&rec)
	if validate.HasCritical(issues) {
		if humanOutput {
			for _, issue := range issues {
				outputHuman("  [%s] %s\n", issue.Severity, issue.Reason)
			}
		} else {
			outputJSON(AddResponse{Status: "rejected", Issues: issues})
		}
		exitWithError(ExitDataError, "record failed acceptance checks")
	}

	key, err := corpus.Propose(config.RecordsPath(repoRoot), rec)
	if err != nil {
		exitWithError(ExitError, "adding record: %v", err)
	}

	if humanOutput {
		outputHuman("Added %s: %s\n", key, truncateString(rec.Title, 70))
		return nil
	}
	return outputJSON(AddResponse{Status: "added", Key: key, Issues: issues})
}
