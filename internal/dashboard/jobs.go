package dashboard

import (
	"context"
	"errors"
	"log"

	"jobdash/internal/domain/job"
	"jobdash/internal/jobview"
)

var ErrNoScreen = errors.New("no job view is mounted")

// API is the part of the jobs backend the dashboard talks to.
type API interface {
	jobview.FavoriteAPI
	jobview.DetailAPI
	GetFavoriteJobs(ctx context.Context, filter job.FavoriteFilter) ([]job.Job, error)
	GetRecommendedJobs(ctx context.Context, params job.RecommendParams) ([]job.Job, error)
	SearchJobs(ctx context.Context, params job.SearchParams) (job.Page, error)
	GetHotJobs(ctx context.Context, limit int) ([]job.Job, error)
}

// FavoriteNotifier is told about every confirmed favorite change.
type FavoriteNotifier interface {
	FavoriteChanged(userID string, id job.ID, isFavorite bool)
}

type Listing struct {
	Items []jobview.View `json:"list"`
	Total int            `json:"total"`
}

// Jobs runs the job operations of the dashboard against the screen of the
// view they belong to.
type Jobs struct {
	api    API
	notify FavoriteNotifier
	logger *log.Logger
}

func NewJobs(api API, notify FavoriteNotifier, logger *log.Logger) *Jobs {
	if logger == nil {
		logger = log.Default()
	}
	return &Jobs{api: api, notify: notify, logger: logger}
}

func (j *Jobs) Search(ctx context.Context, w *Workspace, params job.SearchParams) (Listing, error) {
	items, total, err := w.Active(ViewSearch).RefreshPage(ctx, func(ctx context.Context) (job.Page, error) {
		return j.api.SearchJobs(ctx, params)
	})
	if err != nil {
		return Listing{}, err
	}
	return Listing{Items: jobview.Snapshots(items), Total: total}, nil
}

func (j *Jobs) Hot(ctx context.Context, w *Workspace, limit int) (Listing, error) {
	return j.refresh(ctx, w, ViewHot, func(ctx context.Context) ([]job.Job, error) {
		return j.api.GetHotJobs(ctx, limit)
	})
}

func (j *Jobs) Recommendations(ctx context.Context, w *Workspace, params job.RecommendParams) (Listing, error) {
	return j.refresh(ctx, w, ViewRecommend, func(ctx context.Context) ([]job.Job, error) {
		return j.api.GetRecommendedJobs(ctx, params)
	})
}

func (j *Jobs) Favorites(ctx context.Context, w *Workspace, filter job.FavoriteFilter) (Listing, error) {
	return j.refresh(ctx, w, ViewFavorites, func(ctx context.Context) ([]job.Job, error) {
		return j.api.GetFavoriteJobs(ctx, filter)
	})
}

// Detail loads a job into the mounted job view so the list entry picks up
// the fresh attributes. Without a job view the detail gets its own screen.
func (j *Jobs) Detail(ctx context.Context, w *Workspace, id job.ID) (jobview.View, error) {
	s := w.Current()
	if s == nil {
		s = w.Active(ViewDetail)
	}
	it, err := s.Detail(ctx, j.api, id)
	if err != nil {
		return jobview.View{}, err
	}
	return it.Snapshot(), nil
}

// ToggleFavorite flips the favorite state of a job on the mounted screen.
// The request is never cancelled once issued. When the screen was unmounted
// or refreshed while it ran, the change is still announced but the result
// is reported as jobview.ErrStale.
func (j *Jobs) ToggleFavorite(ctx context.Context, w *Workspace, userID string, id job.ID) (jobview.View, error) {
	s := w.Current()
	if s == nil {
		return jobview.View{}, ErrNoScreen
	}
	token, err := s.Token()
	if err != nil {
		return jobview.View{}, err
	}
	it, err := s.Item(id)
	if err != nil {
		return jobview.View{}, err
	}

	fav, err := jobview.ToggleFavorite(context.WithoutCancel(ctx), j.api, it)
	if err != nil {
		if !errors.Is(err, jobview.ErrToggleInFlight) {
			j.logger.Printf("[Dashboard] favorite toggle failed job_id=%s err=%v", id, err)
		}
		if serr := s.Settle(token); serr != nil {
			return jobview.View{}, serr
		}
		return it.Snapshot(), err
	}

	if j.notify != nil {
		j.notify.FavoriteChanged(userID, id, fav)
	}
	if err := s.Settle(token); err != nil {
		return jobview.View{}, err
	}
	return it.Snapshot(), nil
}

func (j *Jobs) refresh(ctx context.Context, w *Workspace, view string, fetch jobview.Fetcher) (Listing, error) {
	items, err := w.Active(view).Refresh(ctx, fetch)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Items: jobview.Snapshots(items), Total: len(items)}, nil
}
