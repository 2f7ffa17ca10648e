package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// compoundSelector is one comma-separated alternative of a selector list:
// an optional tag name plus any number of #id, .class, [attr] and
// [attr=value] qualifiers, all of which must match the same element.
// Combinators (descendant, child, sibling) are not supported; the
// providers shipped with PagePulse only need flat selectors.
type compoundSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSelector
}

type attrSelector struct {
	name     string
	value    string
	hasValue bool
}

// parseSelectorList parses a comma-separated selector list.
func parseSelectorList(selector string) ([]compoundSelector, error) {
	parts := strings.Split(selector, ",")
	sels := make([]compoundSelector, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty selector in list %q", selector)
		}
		if strings.ContainsAny(part, " >+~") {
			return nil, fmt.Errorf("unsupported combinator in selector %q", part)
		}
		sel, err := parseCompound(part)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

func parseCompound(s string) (compoundSelector, error) {
	var sel compoundSelector
	for len(s) > 0 {
		switch s[0] {
		case '#':
			token, rest := readToken(s[1:])
			if token == "" {
				return sel, fmt.Errorf("missing id after '#' in selector")
			}
			sel.id = token
			s = rest
		case '.':
			token, rest := readToken(s[1:])
			if token == "" {
				return sel, fmt.Errorf("missing class after '.' in selector")
			}
			sel.classes = append(sel.classes, token)
			s = rest
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return sel, fmt.Errorf("unterminated attribute selector in %q", s)
			}
			body := s[1:end]
			s = s[end+1:]
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				value := strings.Trim(body[eq+1:], `"'`)
				sel.attrs = append(sel.attrs, attrSelector{name: body[:eq], value: value, hasValue: true})
			} else {
				sel.attrs = append(sel.attrs, attrSelector{name: body})
			}
		default:
			token, rest := readToken(s)
			if token == "" {
				return sel, fmt.Errorf("invalid selector syntax at %q", s)
			}
			if sel.tag != "" {
				return sel, fmt.Errorf("duplicate tag name in selector")
			}
			sel.tag = strings.ToLower(token)
			s = rest
		}
	}
	return sel, nil
}

// readToken consumes an identifier: letters, digits, '-', '_' and '*'.
func readToken(s string) (token, rest string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '#' || c == '.' || c == '[' {
			break
		}
		i++
	}
	return s[:i], s[i:]
}

func (s compoundSelector) matches(n *html.Node) bool {
	if s.tag != "" && s.tag != "*" && !strings.EqualFold(n.Data, s.tag) {
		return false
	}
	if s.id != "" {
		if id, ok := attrValue(n, "id"); !ok || id != s.id {
			return false
		}
	}
	if len(s.classes) > 0 {
		classAttr, _ := attrValue(n, "class")
		classes := strings.Fields(classAttr)
		for _, want := range s.classes {
			if !containsString(classes, want) {
				return false
			}
		}
	}
	for _, attr := range s.attrs {
		value, ok := attrValue(n, attr.name)
		if !ok {
			return false
		}
		if attr.hasValue && value != attr.value {
			return false
		}
	}
	return true
}

func attrValue(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
