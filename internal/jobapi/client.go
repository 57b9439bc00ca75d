// Package jobapi maps the dashboard's job operations onto the jobs backend.
// It issues exactly one request per call and never retries, caches or
// reshapes the result; adding view state is the caller's job.
package jobapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"jobdash/internal/domain/job"
	"jobdash/internal/transport"
)

const (
	PathFavorite        = "/my/jobs/collect/addJob"
	PathUnfavorite      = "/my/jobs/collect/deleteJob"
	PathFavoriteList    = "/my/jobs/collectList"
	PathRecommendations = "/my/jobs/recommendations"
	PathDetail          = "/my/jobs/detail"
	PathSearch          = "/my/jobs/search"
	PathHot             = "/my/jobs/hot"

	DefaultHotLimit = 10
)

// ValidationError reports local input that cannot form a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type Client struct {
	tr transport.Transport
}

func New(tr transport.Transport) *Client {
	return &Client{tr: tr}
}

func (c *Client) FavoriteJob(ctx context.Context, ref job.Ref) (json.RawMessage, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	var ack json.RawMessage
	if err := c.tr.Post(ctx, PathFavorite, ref, &ack); err != nil {
		return nil, err
	}
	return ack, nil
}

func (c *Client) UnfavoriteJob(ctx context.Context, ref job.Ref) (json.RawMessage, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	var ack json.RawMessage
	if err := c.tr.Post(ctx, PathUnfavorite, ref, &ack); err != nil {
		return nil, err
	}
	return ack, nil
}

func (c *Client) GetFavoriteJobs(ctx context.Context, filter job.FavoriteFilter) ([]job.Job, error) {
	out := make([]job.Job, 0)
	if err := c.tr.Get(ctx, PathFavoriteList, filter.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRecommendedJobs(ctx context.Context, params job.RecommendParams) ([]job.Job, error) {
	out := make([]job.Job, 0)
	if err := c.tr.Get(ctx, PathRecommendations, params.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetJobDetail(ctx context.Context, id job.ID) (job.Job, error) {
	raw := strings.TrimSpace(id.String())
	if raw == "" {
		return job.Job{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}

	var out job.Job
	if err := c.tr.Get(ctx, PathDetail+"?id="+url.QueryEscape(raw), nil, &out); err != nil {
		return job.Job{}, err
	}
	return out, nil
}

func (c *Client) SearchJobs(ctx context.Context, params job.SearchParams) (job.Page, error) {
	var out job.Page
	if err := c.tr.Get(ctx, PathSearch, params.Query(), &out); err != nil {
		return job.Page{}, err
	}
	if out.List == nil {
		out.List = make([]job.Job, 0)
	}
	return out, nil
}

// GetHotJobs lists the most viewed jobs. A limit <= 0 requests
// DefaultHotLimit.
func (c *Client) GetHotJobs(ctx context.Context, limit int) ([]job.Job, error) {
	if limit <= 0 {
		limit = DefaultHotLimit
	}
	out := make([]job.Job, 0)
	if err := c.tr.Get(ctx, PathHot+"?limit="+strconv.Itoa(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func validateRef(ref job.Ref) error {
	if strings.TrimSpace(ref.ID.String()) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return nil
}
