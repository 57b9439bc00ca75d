// Package jobview holds the dashboard-side state of jobs: the server's Job
// plus flags that exist only while a request is in flight.
package jobview

import (
	"sync"

	"jobdash/internal/domain/job"
)

// Item is one Job as shown on a screen. Its id is fixed at creation.
type Item struct {
	mu sync.Mutex

	id              job.ID
	job             job.Job
	favoriteLoading bool
	loading         bool
}

func NewItem(j job.Job) *Item {
	j.Keywords = cloneKeywords(j.Keywords)
	return &Item{id: j.ID, job: j}
}

func (it *Item) ID() job.ID {
	return it.id
}

// View is the serialized form of an Item.
type View struct {
	job.Job
	FavoriteLoading bool `json:"favoriteLoading"`
	Loading         bool `json:"loading"`
}

func (it *Item) Snapshot() View {
	it.mu.Lock()
	defer it.mu.Unlock()

	j := it.job
	j.Keywords = cloneKeywords(j.Keywords)
	return View{Job: j, FavoriteLoading: it.favoriteLoading, Loading: it.loading}
}

func (it *Item) IsFavorite() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.job.IsFavorite
}

func (it *Item) FavoriteLoading() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.favoriteLoading
}

func (it *Item) Loading() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.loading
}

// merge copies descriptive attributes from a fresher copy of the same job.
// isFavorite is taken from the server, the id never changes.
func (it *Item) merge(j job.Job) {
	it.mu.Lock()
	defer it.mu.Unlock()

	reason := it.job.RecommendReason
	j.ID = it.id
	j.Keywords = cloneKeywords(j.Keywords)
	if j.RecommendReason == "" {
		j.RecommendReason = reason
	}
	it.job = j
}

func cloneKeywords(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func Snapshots(items []*Item) []View {
	out := make([]View, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.Snapshot())
	}
	return out
}
