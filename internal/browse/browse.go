// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browse abstracts the page surface the harvester scrapes. Callers
// work against Page and Element so extraction logic stays independent of how
// the page was fetched or rendered.
package browse

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned by backends that cannot perform an operation,
// such as script evaluation on a static document.
var ErrUnsupported = errors.New("browse: operation not supported by backend")

// ErrNotFound is returned when a selector matches nothing within its wait
// window.
var ErrNotFound = errors.New("browse: selector matched no elements")

// Element is a node found on a Page.
type Element interface {
	// Attribute returns the value of a named attribute and whether it exists.
	Attribute(name string) (string, bool)
	// Text returns the element's visible text content, trimmed.
	Text() string
	// HTML returns the element's inner HTML.
	HTML() (string, error)
	// Find returns descendant elements matching the CSS selector.
	Find(selector string) []Element
	// Click activates the element. Static backends return ErrUnsupported.
	Click(ctx context.Context) error
}

// Page is a loaded document that can be queried and, on dynamic backends,
// interacted with.
type Page interface {
	// Navigate loads a URL into the page.
	Navigate(ctx context.Context, url string) error
	// URL reports the page's current location.
	URL() string
	// Content returns the full serialized HTML of the document.
	Content() (string, error)
	// Query returns the first element matching the CSS selector, or nil.
	Query(selector string) Element
	// QueryAll returns all elements matching the CSS selector.
	QueryAll(selector string) []Element
	// WaitForSelector blocks until the selector matches or the timeout
	// elapses, returning ErrNotFound on expiry.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// Evaluate runs a script expression in page context. Static backends
	// return ErrUnsupported.
	Evaluate(expr string) (any, error)
}

// Browser produces pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}
