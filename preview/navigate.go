package preview

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ActionKind is what the injected click handler does for an element.
type ActionKind int

const (
	// ActionNone leaves the click to the page's own handlers.
	ActionNone ActionKind = iota
	ActionSuppress
	ActionScrollTo
	ActionOpenExternal
	ActionScrollTop
	ActionPulse
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionSuppress:
		return "suppress"
	case ActionScrollTo:
		return "scroll-to"
	case ActionOpenExternal:
		return "open-external"
	case ActionScrollTop:
		return "scroll-top"
	case ActionPulse:
		return "pulse"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// ClickAction is the outcome of a simulated click. Target is the element id
// for ActionScrollTo and the URL for ActionOpenExternal.
type ClickAction struct {
	Kind   ActionKind
	Target string
}

// Element is a clickable anchor or button found in a document.
type Element struct {
	Tag        string
	Href       string
	HasHref    bool
	ID         string
	Text       string
	HasHandler bool
	Disabled   bool
}

// Document is a parsed artifact indexed for click simulation.
type Document struct {
	ids       map[string]bool
	Clickable []Element
}

// Index parses doc and collects element ids plus every anchor and button.
func Index(doc string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	d := &Document{ids: make(map[string]bool)}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := attr(n, "id"); id != "" {
				d.ids[id] = true
			}
			if n.Data == "a" || n.Data == "button" {
				d.Clickable = append(d.Clickable, element(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return d, nil
}

func (d *Document) HasID(id string) bool { return d.ids[id] }

// ResolveClick mirrors the injected click handler for one element.
func (d *Document) ResolveClick(el Element) ClickAction {
	if el.Tag == "button" {
		if el.Disabled {
			return ClickAction{Kind: ActionSuppress}
		}
		if el.HasHandler {
			return ClickAction{Kind: ActionNone}
		}
		return ClickAction{Kind: ActionPulse}
	}

	href := strings.TrimSpace(el.Href)
	lower := strings.ToLower(href)
	if href == "" || href == "#" || strings.HasPrefix(lower, "javascript:") || el.Disabled {
		return ClickAction{Kind: ActionSuppress}
	}
	if strings.HasPrefix(href, "#") {
		id := href[1:]
		if un, err := url.PathUnescape(id); err == nil {
			id = un
		}
		if d.ids[id] {
			return ClickAction{Kind: ActionScrollTo, Target: id}
		}
		return ClickAction{Kind: ActionSuppress}
	}
	if strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ClickAction{Kind: ActionOpenExternal, Target: href}
	}
	return ClickAction{Kind: ActionScrollTop}
}

// Click resolves an anchor by its href as written in the document.
func (d *Document) Click(href string) ClickAction {
	return d.ResolveClick(Element{Tag: "a", Href: href, HasHref: true})
}

// Plan resolves every clickable element in document order.
func (d *Document) Plan() []Resolved {
	out := make([]Resolved, 0, len(d.Clickable))
	for _, el := range d.Clickable {
		out = append(out, Resolved{Element: el, Action: d.ResolveClick(el)})
	}
	return out
}

// Resolved pairs an element with its click outcome.
type Resolved struct {
	Element Element
	Action  ClickAction
}

func element(n *html.Node) Element {
	el := Element{
		Tag:        n.Data,
		ID:         attr(n, "id"),
		Text:       strings.Join(strings.Fields(text(n)), " "),
		HasHandler: attr(n, "onclick") != "",
		Disabled:   attr(n, "aria-disabled") == "true",
	}
	for _, a := range n.Attr {
		if a.Key == "href" {
			el.Href = a.Val
			el.HasHref = true
		}
		if a.Key == "disabled" && n.Data == "button" {
			el.Disabled = true
		}
	}
	return el
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(text(c))
	}
	return sb.String()
}
