// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity resolves an author input (raw ID, profile URL, or name)
// to a concrete author identity, with an optional short-TTL lookup cache.
package identity

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/scholar-harvest/internal/semantic"
)

// profileIDParam is the query parameter carrying the author ID on profile
// listing URLs.
const profileIDParam = "user"

var rawIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{8,}$`)

// ErrNoMatch means no identity could be resolved for the input. This is the
// one fatal error of a run: without an identity there is nothing to harvest.
var ErrNoMatch = fmt.Errorf("no matching author identity")

// Identity is a resolved author.
type Identity struct {
	AuthorID string `json:"author_id" yaml:"author_id"`
	Name     string `json:"name" yaml:"name"`
	// ProfileURL is the listing page to paginate when scraping.
	ProfileURL string `json:"profile_url" yaml:"profile_url"`
}

// FromInput extracts an author ID directly from raw input without any
// network lookup. It accepts a bare ID or a profile URL carrying one;
// anything else returns false and needs a search-based resolution.
func FromInput(input string) (Identity, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Identity{}, false
	}

	if strings.Contains(input, "://") || strings.HasPrefix(input, "scholar.google.") {
		raw := input
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			return Identity{}, false
		}
		id := parsed.Query().Get(profileIDParam)
		if id == "" {
			return Identity{}, false
		}
		return Identity{AuthorID: id, ProfileURL: ProfileURL(id)}, true
	}

	if rawIDRe.MatchString(input) && !strings.Contains(input, " ") {
		return Identity{AuthorID: input, ProfileURL: ProfileURL(input)}, true
	}
	return Identity{}, false
}

// ProfileURL builds the profile listing URL for an author ID.
func ProfileURL(authorID string) string {
	return fmt.Sprintf("https://scholar.google.com/citations?user=%s&hl=en&cstart=0&pagesize=100", url.QueryEscape(authorID))
}

// Searcher finds author identities by free-text query.
type Searcher interface {
	SearchAuthors(ctx context.Context, query string) ([]semantic.Author, error)
}

// Resolver turns author inputs into identities, consulting the cache before
// the search API.
type Resolver struct {
	searcher Searcher
	cache    *Cache
}

// NewResolver builds a resolver. cache may be nil to disable caching.
func NewResolver(searcher Searcher, cache *Cache) *Resolver {
	return &Resolver{searcher: searcher, cache: cache}
}

// Resolve maps input to an identity. Direct ID and profile-URL inputs skip
// the network entirely; name inputs go through the cache, then the search
// API, taking the first (most relevant) result. ErrNoMatch is terminal for
// the run.
func (r *Resolver) Resolve(ctx context.Context, input string) (Identity, error) {
	if id, ok := FromInput(input); ok {
		return id, nil
	}

	query := strings.TrimSpace(input)
	if query == "" {
		return Identity{}, ErrNoMatch
	}

	if r.cache != nil {
		if id, ok, err := r.cache.Get(query); err == nil && ok {
			return id, nil
		}
	}

	if r.searcher == nil {
		return Identity{}, fmt.Errorf("resolving %q: %w", input, ErrNoMatch)
	}
	authors, err := r.searcher.SearchAuthors(ctx, query)
	if err != nil {
		return Identity{}, fmt.Errorf("searching author %q: %w", input, err)
	}
	if len(authors) == 0 {
		return Identity{}, fmt.Errorf("resolving %q: %w", input, ErrNoMatch)
	}

	id := Identity{
		AuthorID: authors[0].AuthorID,
		Name:     authors[0].Name,
	}
	if r.cache != nil {
		// Cache write failures are non-fatal; the lookup already succeeded.
		_ = r.cache.Put(query, id)
	}
	return id, nil
}
