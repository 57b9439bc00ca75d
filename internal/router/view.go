package router

import (
	"fmt"
	"sync"
)

// View is what a route renders.
type View struct {
	Component string
	// Listing views show jobs and own a screen in the dashboard workspace.
	Listing bool
}

type ViewFactory func(component string) (View, error)

// Registry maps component names to their factories.
type Registry map[string]ViewFactory

// LazyView resolves its view on first use and caches it. A failed
// resolution is retried on the next call.
type LazyView struct {
	mu        sync.Mutex
	component string
	factory   ViewFactory
	resolved  bool
	view      View
}

func NewLazyView(component string, factory ViewFactory) *LazyView {
	return &LazyView{component: component, factory: factory}
}

func (l *LazyView) Resolve() (View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.resolved {
		return l.view, nil
	}
	if l.factory == nil {
		return View{}, fmt.Errorf("no view factory for component %q", l.component)
	}
	v, err := l.factory(l.component)
	if err != nil {
		return View{}, fmt.Errorf("resolve component %q: %w", l.component, err)
	}
	l.view = v
	l.resolved = true
	return v, nil
}

func (l *LazyView) Resolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved
}
