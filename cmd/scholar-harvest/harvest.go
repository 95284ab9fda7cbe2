// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/internal/fallback"
	"github.com/pdiddy/scholar-harvest/internal/identity"
	"github.com/pdiddy/scholar-harvest/internal/linkcheck"
	"github.com/pdiddy/scholar-harvest/internal/scrape"
	"github.com/pdiddy/scholar-harvest/internal/semantic"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "scholar-harvest/0.1"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [author]",
	Short: "Scrape an author's profile into publication records",
	Long: `Harvest resolves the author argument (profile URL, author ID, or name)
to an identity, paginates the profile listing up to the target paper count,
enriches each paper from its detail view, and resolves a download link per
paper. Records are written as YAML or JSON to stdout or a file.`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().Int("max-papers", 50, "target number of unique papers to collect")
	harvestCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 20s)")
	harvestCmd.Flags().Duration("page-delay", 2*time.Second, "delay between consecutive page loads")
	harvestCmd.Flags().Duration("settle-delay", 2*time.Second, "settle wait between pagination stability checks")
	harvestCmd.Flags().StringSlice("mirror-domains", nil, "mirror-service domains probed by the fallback chain")
	harvestCmd.Flags().String("unpaywall-email", "", "contact email for the open-access lookup service")
	harvestCmd.Flags().String("output", "", "output file (default stdout)")
	harvestCmd.Flags().String("format", "yaml", "output format: yaml or json")
	harvestCmd.Flags().Bool("debug-report", false, "include a per-paper candidate debug report")
	harvestCmd.Flags().String("cache-dir", "", "identity lookup cache directory (empty disables caching)")

	rootCmd.AddCommand(harvestCmd)
}

// harvestOutput is the document written at the end of a run.
type harvestOutput struct {
	Author identity.Identity   `json:"author" yaml:"author"`
	Term   string              `json:"termination" yaml:"termination"`
	Stats  types.RunStats      `json:"stats" yaml:"stats"`
	Papers []types.PaperRecord `json:"papers" yaml:"papers"`
	Debug  *types.DebugReport  `json:"debug,omitempty" yaml:"debug,omitempty"`
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	pageDelay, _ := cmd.Flags().GetDuration("page-delay")
	settleDelay, _ := cmd.Flags().GetDuration("settle-delay")
	mirrorDomains, _ := cmd.Flags().GetStringSlice("mirror-domains")
	unpaywallEmail, _ := cmd.Flags().GetString("unpaywall-email")
	debugReport, _ := cmd.Flags().GetBool("debug-report")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")

	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent}
	harvestCfg := types.HarvestConfig{
		HTTPConfig:   httpCfg,
		MaxPapers:    maxPapers,
		PageDelay:    pageDelay,
		SettleDelay:  settleDelay,
		CollectDebug: debugReport,
	}
	fallbackCfg := types.FallbackConfig{
		HTTPConfig:     httpCfg,
		MirrorDomains:  mirrorDomains,
		UnpaywallEmail: secretDefault("unpaywall-email", unpaywallEmail),
	}
	apiCfg := types.APIConfig{
		HTTPConfig: httpCfg,
		APIKey:     secretDefault("semantic-scholar-api-key", ""),
	}

	cache, err := identity.OpenCache(types.IdentityConfig{CacheDir: cacheDir})
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	resolver := identity.NewResolver(semantic.NewClient(apiCfg), cache)
	ident, err := resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	if ident.ProfileURL == "" {
		return fmt.Errorf("author %q has no scrapeable profile; use the papers command for API-only listings", args[0])
	}
	fmt.Fprintf(os.Stderr, "harvesting author %s\n", ident.AuthorID)

	browser := browse.NewStaticBrowser(httpCfg)
	defer browser.Close()

	validator := linkcheck.NewValidator(httpCfg)
	chain := fallback.NewChain(validator, os.Stderr,
		fallback.NewNativeScan(),
		fallback.NewOpenAccessStrategy(fallback.NewUnpaywallClient(fallbackCfg)),
		fallback.NewMirrorStrategy(browser, fallbackCfg, os.Stderr),
	)

	harvester := scrape.NewHarvester(browser, validator, chain, harvestCfg, os.Stderr)
	res, err := harvester.Run(ctx, ident)
	if err != nil {
		return err
	}

	out := harvestOutput{
		Author: ident,
		Term:   res.Term.String(),
		Stats:  res.Stats,
		Papers: res.Papers,
		Debug:  res.Debug,
	}
	return writeOutput(cmd, out)
}

// writeOutput marshals a document per the format/output flags.
func writeOutput(cmd *cobra.Command, doc any) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case "yaml", "":
		data, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}
