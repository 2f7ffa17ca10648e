package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/pagepulse/pagepulse/pkg/dom"
)

// PageDocument presents a live playwright page as a dom.Document, the
// read-only surface state providers consume.
type PageDocument struct {
	page playwright.Page
}

// NewPageDocument wraps a page. The document does not own the page;
// closing the session invalidates outstanding element handles, which
// providers already treat as per-entity failures.
func NewPageDocument(page playwright.Page) *PageDocument {
	return &PageDocument{page: page}
}

// URL returns the page's current address.
func (d *PageDocument) URL() string {
	return d.page.URL()
}

// QuerySelector returns the first matching element, or nil.
func (d *PageDocument) QuerySelector(selector string) (dom.Element, error) {
	handle, err := d.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if handle == nil {
		return nil, nil
	}
	return &pageElement{handle: handle}, nil
}

// QuerySelectorAll returns every matching element in document order.
func (d *PageDocument) QuerySelectorAll(selector string) ([]dom.Element, error) {
	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}

	elements := make([]dom.Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &pageElement{handle: handle})
	}
	return elements, nil
}

// pageElement wraps one live element handle.
type pageElement struct {
	handle playwright.ElementHandle
}

func (e *pageElement) TextContent() (string, error) {
	text, err := e.handle.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

func (e *pageElement) GetAttribute(name string) (string, bool, error) {
	// getAttribute distinguishes a missing attribute (null) from an
	// empty one, which the playwright convenience accessor flattens.
	result, err := e.handle.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return "", false, fmt.Errorf("attribute read failed: %w", err)
	}
	if result == nil {
		return "", false, nil
	}
	value, ok := result.(string)
	if !ok {
		return "", false, fmt.Errorf("unexpected attribute value type %T", result)
	}
	return value, true, nil
}

func (e *pageElement) IsVisible() (bool, error) {
	visible, err := e.handle.IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility check failed: %w", err)
	}
	return visible, nil
}

func (e *pageElement) Evaluate(expression string) (interface{}, error) {
	result, err := e.handle.Evaluate(expression)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}
