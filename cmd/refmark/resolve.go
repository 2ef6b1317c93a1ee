package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/refmark/internal/config"
	"github.com/matsen/refmark/internal/enrich"
	"github.com/matsen/refmark/internal/pipeline"
)

var (
	resolveOut               string
	resolveBib               string
	resolveAllowPlaceholders bool
	resolveEnrich            bool
	resolveWorkers           int
	resolveTimeout           int
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveOut, "out", "o", "", "Write the transformed document here (default: stdout)")
	resolveCmd.Flags().StringVar(&resolveBib, "bib", "", "Write the bibliography here (default: <out>.bib, or stdout)")
	resolveCmd.Flags().BoolVar(&resolveAllowPlaceholders, "allow-placeholders", false, "Allow unresolved citations as placeholder keys")
	resolveCmd.Flags().BoolVar(&resolveEnrich, "enrich", false, "Recover metadata for unmatched citations with strong identifiers")
	resolveCmd.Flags().IntVar(&resolveWorkers, "workers", 0, "Enrichment concurrency (default from refmark.yaml)")
	resolveCmd.Flags().IntVar(&resolveTimeout, "timeout", 0, "Per-request enrichment timeout in seconds (default from refmark.yaml)")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <document.md>",
	Short: "Resolve reference links and emit the document with its bibliography",
	Long: `Resolve every inline reference link in a markdown document against the
corpus, replace resolved links with citation markers, and emit the
transformed document plus a BibTeX bibliography.

Resolution fails (exit 4) if any citation stays unmatched or any
validation gate raises a critical issue, unless --allow-placeholders is
given. With --enrich, unmatched citations carrying a DOI are looked up
in Crossref and accepted records are appended to the corpus.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// ResolveResponse is the JSON response for the resolve command.
type ResolveResponse struct {
	Status       string           `json:"status"`
	Document     string           `json:"document,omitempty"`
	Bibliography string           `json:"bibliography,omitempty"`
	Report       *pipeline.Report `json:"report"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	records := mustLoadRecords(repoRoot)

	policy, err := config.LoadPolicy(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading policy: %v", err)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading document: %v", err)
	}

	opts := pipeline.Options{
		AllowPlaceholders: resolveAllowPlaceholders || policy.AllowPlaceholders,
		Enrich:            resolveEnrich || policy.Enrich,
		Workers:           policy.Workers,
		Timeout:           time.Duration(policy.TimeoutSeconds) * time.Second,
		RecordsPath:       config.RecordsPath(repoRoot),
	}
	if resolveWorkers > 0 {
		opts.Workers = resolveWorkers
	}
	if resolveTimeout > 0 {
		opts.Timeout = time.Duration(resolveTimeout) * time.Second
	}

	var enricher enrich.Enricher
	if opts.Enrich {
		// Pick up CROSSREF_MAILTO from .env if present.
		godotenv.Load()

		var clientOpts []enrich.CrossrefOption
		if cfg.CrossrefMailto != "" {
			clientOpts = append(clientOpts, enrich.WithMailto(cfg.CrossrefMailto))
		}
		enricher = enrich.NewCrossrefClient(clientOpts...)
	}

	out, err := pipeline.Run(context.Background(), source, records, enricher, opts)
	if err != nil {
		exitWithError(ExitError, "resolving: %v", err)
	}

	if !out.Report.Success {
		if humanOutput {
			outputHuman("%s", out.Report.Human())
		} else {
			outputJSON(ResolveResponse{Status: "failed", Report: out.Report})
		}
		os.Exit(ExitUnresolved)
	}

	if resolveOut != "" {
		if err := os.WriteFile(resolveOut, out.Document, 0644); err != nil {
			exitWithError(ExitError, "writing document: %v", err)
		}
	}

	bibPath := resolveBib
	if bibPath == "" && resolveOut != "" {
		bibPath = strings.TrimSuffix(resolveOut, ".md") + ".bib"
	}
	if bibPath == "" && cfg.DefaultBibliography != "" {
		bibPath = cfg.DefaultBibliography
	}
	if bibPath != "" {
		if err := os.WriteFile(bibPath, []byte(out.Bibliography), 0644); err != nil {
			exitWithError(ExitError, "writing bibliography: %v", err)
		}
	}

	if humanOutput {
		outputHuman("%s", out.Report.Human())
		if resolveOut == "" {
			outputHuman("%s", string(out.Document))
		}
		return nil
	}

	resp := ResolveResponse{Status: "resolved", Report: out.Report}
	if resolveOut == "" {
		resp.Document = string(out.Document)
	}
	if bibPath == "" {
		resp.Bibliography = out.Bibliography
	}
	return outputJSON(resp)
}
