package router

import (
	"errors"
	"fmt"
	"sync"
)

var ErrTooManyRedirects = errors.New("too many redirects")

const maxRedirects = 8

type State int

const (
	Idle State = iota
	Deciding
)

// Result describes a finished navigation. Match is where the navigator
// ended up; Requested is the path that was pushed.
type Result struct {
	Requested  string
	Match      Match
	Redirected bool
}

// Navigator drives transitions through the guard and remembers the current
// route. A navigation that ends in an error leaves the current route as it
// was. Concurrent pushes run one after another, each starting from the
// route the previous one settled on.
type Navigator struct {
	table *Table
	guard *Guard

	push sync.Mutex

	mu      sync.Mutex
	state   State
	current Match
}

func NewNavigator(table *Table, guard *Guard) *Navigator {
	return &Navigator{table: table, guard: guard}
}

func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Navigator) Current() (Match, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, n.current.Found()
}

func (n *Navigator) Push(path string) (Result, error) {
	n.push.Lock()
	defer n.push.Unlock()

	n.mu.Lock()
	n.state = Deciding
	from := n.current
	n.mu.Unlock()

	res, err := n.resolve(path, from)

	n.mu.Lock()
	n.state = Idle
	if err == nil {
		n.current = res.Match
	}
	n.mu.Unlock()
	return res, err
}

func (n *Navigator) resolve(path string, from Match) (Result, error) {
	res := Result{Requested: path}
	target := path
	for hop := 0; hop <= maxRedirects; hop++ {
		m, ok := n.table.Match(target)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrRouteNotFound, m.Path)
		}
		if m.Route.Redirect != "" {
			target = m.Route.Redirect
			res.Redirected = true
			continue
		}

		var step continuation
		n.guard.BeforeEach(m, from, &step)
		if step.redirect == "" {
			res.Match = m
			return res, nil
		}
		target = step.redirect
		res.Redirected = true
	}
	return Result{}, fmt.Errorf("%w: %s", ErrTooManyRedirects, path)
}

type continuation struct {
	redirect string
}

func (c *continuation) Proceed() {}

func (c *continuation) Redirect(path string) {
	c.redirect = path
}
