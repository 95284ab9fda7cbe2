// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape drives the author-profile harvest: pagination over the
// listing, per-row extraction, detail-page enrichment, and final link
// resolution for each paper.
package scrape

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// Row is one raw listing entry: the draft record plus the download-link
// candidates discovered inline on the row.
type Row struct {
	Record     types.PaperRecord
	Candidates []types.Candidate
}

// RowSource exposes a paged listing. Rows consumes forward from an internal
// cursor; LoadMore asks the source to reveal further entries.
type RowSource interface {
	// Rows returns up to max not-yet-consumed rows.
	Rows(ctx context.Context, max int) ([]Row, error)
	// RowCount reports the total number of rows currently revealed.
	RowCount(ctx context.Context) (int, error)
	// LoadMore attempts to reveal more rows (pagination or "show more").
	LoadMore(ctx context.Context) error
}

// TermState records how a pagination run ended.
type TermState int

const (
	// Done means the target count was reached.
	Done TermState = iota
	// Stalled means the source stopped growing before the target, confirmed
	// by two stable observations.
	Stalled
)

func (t TermState) String() string {
	if t == Done {
		return "done"
	}
	return "stalled"
}

// Controller collects rows from a paged source until a target count of
// unique records is reached or the source demonstrably stops growing.
type Controller struct {
	// Target is the number of unique records to collect.
	Target int
	// BufferCap caps the extra rows requested per iteration to absorb
	// duplicates from a load-more action.
	BufferCap int
	// SettleDelay separates the two stability checks. Content may still be
	// rendering right after a load attempt, so a single check is not proof
	// of exhaustion.
	SettleDelay time.Duration
	// PageDelay paces consecutive load attempts.
	PageDelay time.Duration
	// Log receives progress lines; nil discards them.
	Log io.Writer

	sleep func(ctx context.Context, d time.Duration) error
}

// Run drives the fetch loop. The collected rows are unique by dedup key and
// never exceed Target; extras fetched in an iteration are truncated. The
// context is checked at every top-level iteration so a run cancels cleanly
// between pages.
func (c *Controller) Run(ctx context.Context, src RowSource) ([]Row, TermState, error) {
	log := c.Log
	if log == nil {
		log = io.Discard
	}
	if c.sleep == nil {
		c.sleep = sleepCtx
	}

	var collected []Row
	seenKeys := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return collected, Stalled, err
		}

		remaining := c.Target - len(collected)
		if remaining <= 0 {
			return collected, Done, nil
		}

		buffer := c.BufferCap
		if buffer > remaining {
			buffer = remaining
		}
		rows, err := src.Rows(ctx, remaining+buffer)
		if err != nil {
			return collected, Stalled, fmt.Errorf("reading rows: %w", err)
		}

		for _, row := range rows {
			key := row.Record.DedupKey()
			if key == "" || seenKeys[key] {
				continue
			}
			seenKeys[key] = true
			collected = append(collected, row)
			if len(collected) >= c.Target {
				break
			}
		}
		fmt.Fprintf(log, "collected %d/%d papers\n", len(collected), c.Target)

		if len(collected) >= c.Target {
			return collected, Done, nil
		}

		grew, err := c.revealMore(ctx, src)
		if err != nil {
			return collected, Stalled, err
		}
		if !grew {
			fmt.Fprintf(log, "source exhausted at %d papers\n", len(collected))
			return collected, Stalled, nil
		}

		if c.PageDelay > 0 {
			if err := c.sleep(ctx, c.PageDelay); err != nil {
				return collected, Stalled, err
			}
		}
	}
}

// revealMore triggers loading and confirms growth with two stability checks
// separated by settle delays. A transient "no growth" reading right after
// the load attempt must not end the run.
func (c *Controller) revealMore(ctx context.Context, src RowSource) (bool, error) {
	before, err := src.RowCount(ctx)
	if err != nil {
		return false, fmt.Errorf("counting rows: %w", err)
	}
	if err := src.LoadMore(ctx); err != nil {
		// A failed load attempt is not proof of exhaustion; fall through to
		// the stability checks.
		fmt.Fprintf(ioOrDiscard(c.Log), "load more failed: %v\n", err)
	}

	for check := 0; check < 2; check++ {
		if err := c.sleep(ctx, c.SettleDelay); err != nil {
			return false, err
		}
		count, err := src.RowCount(ctx)
		if err != nil {
			return false, fmt.Errorf("counting rows: %w", err)
		}
		if count > before {
			return true, nil
		}
	}
	return false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func ioOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
