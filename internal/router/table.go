// Package router holds the dashboard's declarative route table and the
// navigation guard that gates admin-only routes.
package router

import (
	_ "embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

var ErrRouteNotFound = errors.New("route not found")

type Meta struct {
	Title         string `yaml:"title" json:"title"`
	RequiresAdmin bool   `yaml:"requiresAdmin" json:"requiresAdmin"`
}

type record struct {
	Path      string   `yaml:"path"`
	Name      string   `yaml:"name"`
	Component string   `yaml:"component"`
	Redirect  string   `yaml:"redirect"`
	Meta      Meta     `yaml:"meta"`
	Children  []record `yaml:"children"`
}

type document struct {
	Routes []record `yaml:"routes"`
}

// Route is one compiled, immutable node of the table.
type Route struct {
	Path      string
	Name      string
	Component string
	Redirect  string
	Meta      Meta
	Parent    *Route
	Children  []*Route

	view *LazyView
}

// View resolves the route's component, loading it on first use.
func (r *Route) View() (View, error) {
	if r.view == nil {
		return View{}, fmt.Errorf("route %s has no view", r.Path)
	}
	return r.view.Resolve()
}

// Match is a resolved location: the leaf route and the chain of routes from
// the root down to it.
type Match struct {
	Path  string
	Route *Route
	Chain []*Route
}

// RequiresAdmin merges the flag over the matched chain.
func (m Match) RequiresAdmin() bool {
	for _, r := range m.Chain {
		if r.Meta.RequiresAdmin {
			return true
		}
	}
	return false
}

// Title is the deepest non-empty title in the chain.
func (m Match) Title() string {
	for i := len(m.Chain) - 1; i >= 0; i-- {
		if t := m.Chain[i].Meta.Title; t != "" {
			return t
		}
	}
	return ""
}

func (m Match) Found() bool {
	return m.Route != nil
}

type Table struct {
	roots []*Route
	all   []*Route
}

// Default compiles the embedded route table.
func Default(views Registry) (*Table, error) {
	return Load(defaultRoutes, views)
}

func Load(data []byte, views Registry) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	if len(doc.Routes) == 0 {
		return nil, errors.New("route table is empty")
	}

	t := &Table{}
	for _, rec := range doc.Routes {
		r, err := t.compile(rec, nil, views)
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, r)
	}

	for _, r := range t.all {
		if r.Redirect == "" {
			continue
		}
		if _, ok := t.Match(r.Redirect); !ok {
			return nil, fmt.Errorf("route %s redirects to unknown path %s", r.Path, r.Redirect)
		}
	}
	return t, nil
}

func (t *Table) compile(rec record, parent *Route, views Registry) (*Route, error) {
	full := joinPath(parent, rec.Path)
	r := &Route{
		Path:      full,
		Name:      strings.TrimSpace(rec.Name),
		Component: strings.TrimSpace(rec.Component),
		Redirect:  strings.TrimSpace(rec.Redirect),
		Meta:      rec.Meta,
		Parent:    parent,
	}

	switch {
	case r.Redirect != "" && r.Component != "":
		return nil, fmt.Errorf("route %s has both a redirect and a component", full)
	case r.Redirect != "":
		r.Redirect = normalize(r.Redirect)
	case r.Component == "":
		return nil, fmt.Errorf("route %s has no component", full)
	default:
		factory, ok := views[r.Component]
		if !ok {
			return nil, fmt.Errorf("route %s: unknown component %q", full, r.Component)
		}
		r.view = NewLazyView(r.Component, factory)
	}

	t.all = append(t.all, r)
	for _, c := range rec.Children {
		child, err := t.compile(c, r, views)
		if err != nil {
			return nil, err
		}
		r.Children = append(r.Children, child)
	}
	return r, nil
}

// Match finds the route for p. Matching ignores case, a trailing slash and
// any query string or fragment.
func (t *Table) Match(p string) (Match, bool) {
	p = normalize(p)
	chain, ok := matchIn(t.roots, p, nil)
	if !ok {
		return Match{Path: p}, false
	}
	return Match{Path: p, Route: chain[len(chain)-1], Chain: chain}, true
}

// Routes lists every route in declaration order, parents before children.
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.all))
	copy(out, t.all)
	return out
}

func matchIn(routes []*Route, p string, chain []*Route) ([]*Route, bool) {
	for _, r := range routes {
		next := append(append([]*Route(nil), chain...), r)
		if len(r.Children) > 0 && hasPrefixFold(p, r.Path) {
			if m, ok := matchIn(r.Children, p, next); ok {
				return m, true
			}
		}
		if strings.EqualFold(r.Path, p) {
			return next, true
		}
	}
	return nil, false
}

func joinPath(parent *Route, p string) string {
	p = strings.TrimSpace(p)
	if parent == nil || strings.HasPrefix(p, "/") {
		return normalize(p)
	}
	if p == "" {
		return parent.Path
	}
	return normalize(path.Join(parent.Path, p))
}

func normalize(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	return p
}

func hasPrefixFold(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if len(p) < len(prefix) || !strings.EqualFold(p[:len(prefix)], prefix) {
		return false
	}
	return len(p) == len(prefix) || p[len(prefix)] == '/'
}
