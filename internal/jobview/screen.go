package jobview

import (
	"context"
	"errors"
	"sync"

	"jobdash/internal/domain/job"
)

var (
	// ErrStale is returned when a response arrives after its screen was
	// unmounted or refreshed again. The response has been dropped.
	ErrStale      = errors.New("stale response discarded")
	ErrUnmounted  = errors.New("screen is not mounted")
	ErrJobMissing = errors.New("job is not on this screen")
)

// Fetcher loads the jobs shown on a screen.
type Fetcher func(ctx context.Context) ([]job.Job, error)

// Screen is the state of one mounted job view. Items live until the next
// Refresh or Unmount; nothing survives navigation.
type Screen struct {
	mu      sync.Mutex
	view    string
	gen     uint64
	mounted bool
	items   []*Item
	byID    map[job.ID]*Item
	total   int
}

func NewScreen(view string) *Screen {
	return &Screen{view: view, byID: make(map[job.ID]*Item)}
}

func (s *Screen) View() string {
	return s.view
}

func (s *Screen) Mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return
	}
	s.gen++
	s.mounted = true
}

// Unmount drops the items and invalidates every request still in flight.
func (s *Screen) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.mounted = false
	s.items = nil
	s.byID = make(map[job.ID]*Item)
	s.total = 0
}

func (s *Screen) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Refresh replaces the items with the result of fetch. fetch runs on a
// context that is not cancelled with ctx: an issued request always runs to
// completion, but its result is discarded with ErrStale when the screen was
// unmounted or refreshed in the meantime.
func (s *Screen) Refresh(ctx context.Context, fetch Fetcher) ([]*Item, error) {
	token, err := s.begin()
	if err != nil {
		return nil, err
	}

	jobs, err := fetch(context.WithoutCancel(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || s.gen != token {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	s.items = make([]*Item, 0, len(jobs))
	s.byID = make(map[job.ID]*Item, len(jobs))
	for _, j := range jobs {
		if j.ID == "" {
			continue
		}
		if _, dup := s.byID[j.ID]; dup {
			continue
		}
		it := NewItem(j)
		s.items = append(s.items, it)
		s.byID[j.ID] = it
	}
	s.total = len(s.items)

	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

// RefreshPage is Refresh for paginated sources; the page total is kept.
func (s *Screen) RefreshPage(ctx context.Context, fetch func(ctx context.Context) (job.Page, error)) ([]*Item, int, error) {
	var total int
	items, err := s.Refresh(ctx, func(ctx context.Context) ([]job.Job, error) {
		p, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		total = p.Total
		return p.List, nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	s.total = total
	s.mu.Unlock()
	return items, total, nil
}

func (s *Screen) Item(id job.ID) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrUnmounted
	}
	it, ok := s.byID[id]
	if !ok {
		return nil, ErrJobMissing
	}
	return it, nil
}

func (s *Screen) Items() []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Screen) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Settle reports whether a result obtained under token may still be
// applied to the screen.
func (s *Screen) Settle(token uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || s.gen != token {
		return ErrStale
	}
	return nil
}

// Token returns the current generation for use with Settle.
func (s *Screen) Token() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return 0, ErrUnmounted
	}
	return s.gen, nil
}

func (s *Screen) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return 0, ErrUnmounted
	}
	s.gen++
	return s.gen, nil
}

// Detail loads one job into the screen. A job the screen does not hold yet
// is added as a placeholder that is removed again when the fetch fails.
func (s *Screen) Detail(ctx context.Context, api DetailAPI, id job.ID) (*Item, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	it, existed := s.byID[id]
	if !existed {
		it = NewItem(job.Job{ID: id})
		s.items = append(s.items, it)
		s.byID[id] = it
	}
	s.mu.Unlock()

	err = FetchDetail(context.WithoutCancel(ctx), api, it)
	if serr := s.Settle(token); serr != nil {
		return nil, serr
	}
	if err != nil {
		if !existed {
			s.remove(id)
		}
		return nil, err
	}
	return it, nil
}

func (s *Screen) remove(id job.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	for i, it := range s.items {
		if it.ID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
}
