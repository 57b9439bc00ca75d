package dashboard

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"jobdash/internal/jobview"
	"jobdash/internal/router"
	"jobdash/internal/session"
)

// Page is where a navigation ended.
type Page struct {
	Path      string
	Name      string
	Title     string
	Component string

	Requested  string
	Redirected bool
}

// Workspace is one session's dashboard: its navigator and at most one
// mounted job screen.
type Workspace struct {
	id   string
	role atomic.Int64
	nav  *router.Navigator

	mu       sync.Mutex
	screen   *jobview.Screen
	lastSeen time.Time
	now      func() time.Time
}

func newWorkspace(id string, role session.RoleID, table *router.Table, now func() time.Time) *Workspace {
	w := &Workspace{id: id, now: now, lastSeen: now()}
	w.role.Store(int64(role))
	guard := router.NewGuard(session.RoleFunc(w.currentRole), router.Landing)
	w.nav = router.NewNavigator(table, guard)
	return w
}

func (w *Workspace) ID() string {
	return w.id
}

func (w *Workspace) currentRole() session.RoleID {
	return session.RoleID(w.role.Load())
}

// Navigate pushes path through the guard. Landing on a job view mounts a
// fresh screen for it; any other destination just unmounts the previous one.
func (w *Workspace) Navigate(path string) (Page, error) {
	w.touch()

	res, err := w.nav.Push(path)
	if err != nil {
		return Page{}, err
	}
	route := res.Match.Route
	view, err := route.View()
	if err != nil {
		return Page{}, fmt.Errorf("load view for %s: %w", res.Match.Path, err)
	}

	w.mu.Lock()
	if view.Listing {
		w.swapLocked(view.Component)
	} else {
		w.swapLocked("")
	}
	w.mu.Unlock()

	return Page{
		Path:       res.Match.Path,
		Name:       route.Name,
		Title:      res.Match.Title(),
		Component:  view.Component,
		Requested:  res.Requested,
		Redirected: res.Redirected,
	}, nil
}

// Active returns the screen for view, mounting a new one when a different
// view is current.
func (w *Workspace) Active(view string) *jobview.Screen {
	w.touch()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.screen != nil && w.screen.View() == view && w.screen.Mounted() {
		return w.screen
	}
	w.swapLocked(view)
	return w.screen
}

// Current is the mounted screen, nil when the user is not on a job view.
func (w *Workspace) Current() *jobview.Screen {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.screen
}

func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.swapLocked("")
}

func (w *Workspace) swapLocked(view string) {
	if w.screen != nil {
		w.screen.Unmount()
		w.screen = nil
	}
	if view == "" {
		return
	}
	s := jobview.NewScreen(view)
	s.Mount()
	w.screen = s
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastSeen = w.now()
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Workspaces holds the workspace of every live session.
type Workspaces struct {
	table  *router.Table
	idle   time.Duration
	logger *log.Logger
	now    func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewWorkspaces(table *router.Table, idle time.Duration, logger *log.Logger) *Workspaces {
	if logger == nil {
		logger = log.Default()
	}
	return &Workspaces{
		table:  table,
		idle:   idle,
		logger: logger,
		now:    time.Now,
		items:  make(map[string]*Workspace),
	}
}

// Open returns the workspace of st, creating it on first use. The role is
// refreshed from st every time.
func (ws *Workspaces) Open(st session.State) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if w, ok := ws.items[st.ID]; ok {
		w.role.Store(int64(st.RoleID))
		return w
	}
	w := newWorkspace(st.ID, st.RoleID, ws.table, ws.now)
	ws.items[st.ID] = w
	return w
}

// Anonymous is a throwaway workspace for requests without a session.
func (ws *Workspaces) Anonymous() *Workspace {
	return newWorkspace("", session.RoleNone, ws.table, ws.now)
}

func (ws *Workspaces) Get(id string) (*Workspace, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w, ok := ws.items[id]
	return w, ok
}

func (ws *Workspaces) Close(id string) {
	ws.mu.Lock()
	w, ok := ws.items[id]
	delete(ws.items, id)
	ws.mu.Unlock()

	if ok {
		w.Close()
	}
}

func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

// Sweep closes workspaces idle for longer than the configured duration.
func (ws *Workspaces) Sweep() int {
	if ws.idle <= 0 {
		return 0
	}
	cutoff := ws.now().Add(-ws.idle)

	ws.mu.Lock()
	var stale []*Workspace
	for id, w := range ws.items {
		if w.idleSince().Before(cutoff) {
			stale = append(stale, w)
			delete(ws.items, id)
		}
	}
	ws.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}
	if len(stale) > 0 {
		ws.logger.Printf("[Dashboard] swept idle workspaces count=%d", len(stale))
	}
	return len(stale)
}
