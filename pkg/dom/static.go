package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// StaticDocument serves Document queries over a parsed HTML string.
// It has no script engine: Element.Evaluate always returns
// ErrEvaluateUnsupported, and visibility is judged from static markup
// (the hidden attribute and inline display/visibility styles).
type StaticDocument struct {
	root *html.Node
	url  string
}

// ParseStatic parses raw HTML into a StaticDocument. The url is what the
// document reports from URL(); it may be empty.
func ParseStatic(rawHTML, url string) (*StaticDocument, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &StaticDocument{root: root, url: url}, nil
}

// URL returns the address given at parse time.
func (d *StaticDocument) URL() string {
	return d.url
}

// QuerySelector returns the first matching element in document order.
func (d *StaticDocument) QuerySelector(selector string) (Element, error) {
	matches, err := d.query(selector, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// QuerySelectorAll returns every matching element in document order.
func (d *StaticDocument) QuerySelectorAll(selector string) ([]Element, error) {
	return d.query(selector, -1)
}

func (d *StaticDocument) query(selector string, limit int) ([]Element, error) {
	sels, err := parseSelectorList(selector)
	if err != nil {
		return nil, err
	}

	var matches []Element
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			for _, s := range sels {
				if s.matches(n) {
					matches = append(matches, &staticElement{node: n})
					break
				}
			}
			if limit > 0 && len(matches) >= limit {
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return matches, nil
}

// staticElement wraps one parsed HTML node.
type staticElement struct {
	node *html.Node
}

// TextContent concatenates all text in the element's subtree, with
// whitespace collapsed the way rendered text reads.
func (e *staticElement) TextContent() (string, error) {
	var builder strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return strings.Join(strings.Fields(builder.String()), " "), nil
}

// GetAttribute returns the value of the named attribute.
func (e *staticElement) GetAttribute(name string) (string, bool, error) {
	for _, attr := range e.node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val, true, nil
		}
	}
	return "", false, nil
}

// IsVisible judges visibility from static markup only: the hidden
// attribute and inline display:none / visibility:hidden styles, on the
// element or any ancestor.
func (e *staticElement) IsVisible() (bool, error) {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		for _, attr := range n.Attr {
			key := strings.ToLower(attr.Key)
			if key == "hidden" {
				return false, nil
			}
			if key == "style" {
				style := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
				if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// Evaluate is unsupported on static documents.
func (e *staticElement) Evaluate(string) (interface{}, error) {
	return nil, ErrEvaluateUnsupported
}
