// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-harvest/internal/fallback"
	"github.com/pdiddy/scholar-harvest/internal/identity"
	"github.com/pdiddy/scholar-harvest/internal/linkcheck"
	"github.com/pdiddy/scholar-harvest/internal/semantic"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers [author]",
	Short: "List an author's papers via the Semantic Scholar API",
	Long: `Papers resolves the author argument and lists their work straight from
the Semantic Scholar API, sorted by citation count, without scraping. Open
access PDF links are probed before they are reported; papers whose API link
is missing or dead fall back to an open-access lookup by DOI.`,
	Args: cobra.ExactArgs(1),
	RunE: runPapers,
}

func init() {
	papersCmd.Flags().Int("limit", 100, "maximum number of papers to list")
	papersCmd.Flags().String("unpaywall-email", "", "contact email for the open-access lookup service")
	papersCmd.Flags().String("output", "", "output file (default stdout)")
	papersCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	unpaywallEmail, _ := cmd.Flags().GetString("unpaywall-email")

	httpCfg := types.HTTPConfig{Timeout: defaultTimeout, UserAgent: defaultUserAgent}
	apiCfg := types.APIConfig{
		HTTPConfig: httpCfg,
		APIKey:     secretDefault("semantic-scholar-api-key", ""),
	}
	client := semantic.NewClient(apiCfg)

	// A scholar profile ID is useless to the API; names and API author IDs
	// both go through author search for a canonical identity.
	input := args[0]
	var authorID string
	if _, ok := identity.FromInput(input); ok {
		return fmt.Errorf("papers lists via the API; pass an author name, not a profile URL or ID")
	}
	authors, err := client.SearchAuthors(ctx, input)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		return fmt.Errorf("resolving %q: %w", input, identity.ErrNoMatch)
	}
	authorID = authors[0].AuthorID

	papers, err := client.AuthorPapers(ctx, authorID, limit)
	if err != nil {
		return err
	}

	records := semantic.Records(papers)
	oa := fallback.NewUnpaywallClient(types.FallbackConfig{
		HTTPConfig:     httpCfg,
		UnpaywallEmail: secretDefault("unpaywall-email", unpaywallEmail),
	})
	resolvePaperLinks(ctx, linkcheck.NewValidator(httpCfg), oa, records)
	return writeOutput(cmd, records)
}

// linkProber probes whether a URL serves a live document.
type linkProber interface {
	IsLive(ctx context.Context, url string) bool
}

// openAccessSource looks up open-access locations by DOI.
type openAccessSource interface {
	LookupByDOI(ctx context.Context, doi string) (fallback.OpenAccessResult, error)
}

// resolvePaperLinks probes each API-provided download link and drops the dead
// ones. Papers left without a link fall back to an open-access lookup by DOI,
// whose answer is probed the same way.
func resolvePaperLinks(ctx context.Context, prober linkProber, oa openAccessSource, records []types.PaperRecord) {
	for i := range records {
		rec := &records[i]
		if rec.DownloadLink != "" && prober.IsLive(ctx, rec.DownloadLink) {
			continue
		}
		rec.DownloadLink = ""
		if rec.DOI == "" {
			continue
		}
		res, err := oa.LookupByDOI(ctx, rec.DOI)
		if err != nil || !res.IsOpenAccess || res.PDFURL == "" {
			continue
		}
		if prober.IsLive(ctx, res.PDFURL) {
			rec.DownloadLink = res.PDFURL
		}
	}
}
