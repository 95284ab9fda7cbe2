// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-harvest/internal/identity"
	"github.com/pdiddy/scholar-harvest/internal/semantic"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [author]",
	Short: "Resolve an author name, ID, or profile URL to an identity",
	Long: `Resolve maps the author argument to a concrete identity. Profile URLs
and bare author IDs resolve locally; names go through the identity cache and
then the Semantic Scholar author search, taking the most relevant match.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("cache-dir", "", "identity lookup cache directory (empty disables caching)")
	resolveCmd.Flags().Duration("cache-ttl", 12*time.Hour, "how long cached identities stay fresh")
	resolveCmd.Flags().String("output", "", "output file (default stdout)")
	resolveCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")

	cache, err := identity.OpenCache(types.IdentityConfig{CacheDir: cacheDir, CacheTTL: cacheTTL})
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	apiCfg := types.APIConfig{
		HTTPConfig: types.HTTPConfig{Timeout: defaultTimeout, UserAgent: defaultUserAgent},
		APIKey:     secretDefault("semantic-scholar-api-key", ""),
	}
	resolver := identity.NewResolver(semantic.NewClient(apiCfg), cache)

	ident, err := resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd, ident)
}
