// Package dom defines the document boundary that state providers read from.
//
// Providers never talk to a browser library directly; they see a Document,
// a queryable, DOM-shaped surface. Two implementations exist: the live
// playwright-backed page adapter in pkg/browser, and StaticDocument in this
// package, which parses an HTML string and serves queries offline. The
// static form backs provider tests and the CLI's --html mode.
package dom

import "errors"

// ErrEvaluateUnsupported is returned by documents that cannot execute
// script against their elements (e.g. a static HTML document).
var ErrEvaluateUnsupported = errors.New("dom: evaluate is not supported by this document")

// Document is a read-only, queryable view of a page or a scoped element.
type Document interface {
	// QuerySelector returns the first element matching the selector,
	// or nil if no element matches.
	QuerySelector(selector string) (Element, error)

	// QuerySelectorAll returns all elements matching the selector,
	// in document order. An empty result is not an error.
	QuerySelectorAll(selector string) ([]Element, error)

	// URL returns the document's address, or "" if it has none.
	URL() string
}

// Element is a single node within a Document.
type Element interface {
	// TextContent returns the concatenated text of the element's subtree.
	TextContent() (string, error)

	// GetAttribute returns the value of the named attribute.
	// A missing attribute yields "" and ok=false.
	GetAttribute(name string) (value string, ok bool, err error)

	// IsVisible reports whether the element is rendered.
	IsVisible() (bool, error)

	// Evaluate runs a script expression with the element bound as its
	// argument and returns the result. Documents without a script engine
	// return ErrEvaluateUnsupported.
	Evaluate(expression string) (interface{}, error)
}
