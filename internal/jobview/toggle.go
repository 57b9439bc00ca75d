package jobview

import (
	"context"
	"encoding/json"
	"errors"

	"jobdash/internal/domain/job"
)

var (
	ErrToggleInFlight = errors.New("favorite toggle already in flight")
	ErrDetailInFlight = errors.New("detail fetch already in flight")
)

type FavoriteAPI interface {
	FavoriteJob(ctx context.Context, ref job.Ref) (json.RawMessage, error)
	UnfavoriteJob(ctx context.Context, ref job.Ref) (json.RawMessage, error)
}

type DetailAPI interface {
	GetJobDetail(ctx context.Context, id job.ID) (job.Job, error)
}

// ToggleFavorite flips the favorite state of it through the backend. At most
// one toggle runs per item; a second call while one is in flight returns
// ErrToggleInFlight without issuing a request. isFavorite only changes on a
// confirmed response and favoriteLoading is always cleared when the request
// settles. The returned bool is the favorite state after the call.
func ToggleFavorite(ctx context.Context, api FavoriteAPI, it *Item) (bool, error) {
	it.mu.Lock()
	if it.favoriteLoading {
		fav := it.job.IsFavorite
		it.mu.Unlock()
		return fav, ErrToggleInFlight
	}
	it.favoriteLoading = true
	wasFavorite := it.job.IsFavorite
	it.mu.Unlock()

	ref := job.Ref{ID: it.id}
	var err error
	if wasFavorite {
		_, err = api.UnfavoriteJob(ctx, ref)
	} else {
		_, err = api.FavoriteJob(ctx, ref)
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	it.favoriteLoading = false
	if err != nil {
		return it.job.IsFavorite, err
	}
	it.job.IsFavorite = !wasFavorite
	return it.job.IsFavorite, nil
}

// FetchDetail reloads it from the detail endpoint with the same settle
// contract as ToggleFavorite, using the loading flag.
func FetchDetail(ctx context.Context, api DetailAPI, it *Item) error {
	it.mu.Lock()
	if it.loading {
		it.mu.Unlock()
		return ErrDetailInFlight
	}
	it.loading = true
	it.mu.Unlock()

	j, err := api.GetJobDetail(ctx, it.id)

	if err == nil {
		it.merge(j)
	}
	it.mu.Lock()
	it.loading = false
	it.mu.Unlock()
	return err
}
