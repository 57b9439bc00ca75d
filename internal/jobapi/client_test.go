package jobapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"jobdash/internal/domain/job"
	"jobdash/internal/transport"
)

type call struct {
	method string
	path   string
	params map[string]string
	body   any
}

type fakeTransport struct {
	calls []call
	data  string
	err   error
}

func (f *fakeTransport) Get(_ context.Context, path string, params map[string]string, out any) error {
	f.calls = append(f.calls, call{method: http.MethodGet, path: path, params: params})
	return f.reply(out)
}

func (f *fakeTransport) Post(_ context.Context, path string, body any, out any) error {
	f.calls = append(f.calls, call{method: http.MethodPost, path: path, body: body})
	return f.reply(out)
}

func (f *fakeTransport) reply(out any) error {
	if f.err != nil {
		return f.err
	}
	if f.data == "" || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(f.data), out)
}

func (f *fakeTransport) only(t *testing.T) call {
	t.Helper()
	if len(f.calls) != 1 {
		t.Fatalf("expected exactly 1 call, got %d", len(f.calls))
	}
	return f.calls[0]
}

func TestClient_FavoriteAndUnfavoritePaths(t *testing.T) {
	cases := []struct {
		name string
		do   func(*Client) error
		path string
	}{
		{"favorite", func(c *Client) error {
			_, err := c.FavoriteJob(context.Background(), job.Ref{ID: "J1"})
			return err
		}, PathFavorite},
		{"unfavorite", func(c *Client) error {
			_, err := c.UnfavoriteJob(context.Background(), job.Ref{ID: "J1"})
			return err
		}, PathUnfavorite},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeTransport{data: `true`}
			if err := tc.do(New(ft)); err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			c := ft.only(t)
			if c.method != http.MethodPost || c.path != tc.path {
				t.Fatalf("unexpected call %s %s", c.method, c.path)
			}
			ref, ok := c.body.(job.Ref)
			if !ok || ref.ID != "J1" {
				t.Fatalf("unexpected body %#v", c.body)
			}
		})
	}
}

func TestClient_FavoriteEmptyIDIsValidationError(t *testing.T) {
	ft := &fakeTransport{}
	_, err := New(ft).FavoriteJob(context.Background(), job.Ref{})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ft.calls) != 0 {
		t.Fatalf("expected no request, got %d", len(ft.calls))
	}
}

func TestClient_GetHotJobsDefaultLimit(t *testing.T) {
	ft := &fakeTransport{data: `[]`}
	if _, err := New(ft).GetHotJobs(context.Background(), 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c := ft.only(t); c.method != http.MethodGet || c.path != "/my/jobs/hot?limit=10" {
		t.Fatalf("unexpected call %s %s", c.method, c.path)
	}
}

func TestClient_GetHotJobsExplicitLimit(t *testing.T) {
	ft := &fakeTransport{data: `[{"id":"1"},{"id":"2"}]`}
	items, err := New(ft).GetHotJobs(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c := ft.only(t); c.path != "/my/jobs/hot?limit=5" {
		t.Fatalf("unexpected path %s", c.path)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestClient_GetJobDetailUsesLiteralID(t *testing.T) {
	ft := &fakeTransport{data: `{"id":42,"job_name":"Data Engineer","keywords":["SQL"]}`}
	j, err := New(ft).GetJobDetail(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := ft.only(t)
	if c.method != http.MethodGet || !strings.Contains(c.path, "42") || !strings.HasPrefix(c.path, PathDetail) {
		t.Fatalf("unexpected call %s %s", c.method, c.path)
	}
	if j.ID != "42" || j.JobName != "Data Engineer" {
		t.Fatalf("unexpected job %+v", j)
	}
}

func TestClient_GetJobDetailEmptyID(t *testing.T) {
	ft := &fakeTransport{}
	_, err := New(ft).GetJobDetail(context.Background(), " ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "id" {
		t.Fatalf("expected ValidationError on id, got %v", err)
	}
	if len(ft.calls) != 0 {
		t.Fatalf("expected no request")
	}
}

func TestClient_SearchJobsParams(t *testing.T) {
	ft := &fakeTransport{data: `{"list":[{"id":"a"}],"total":31,"page":2,"pageSize":10}`}
	page, err := New(ft).SearchJobs(context.Background(), job.SearchParams{
		Keywords:   "golang",
		City:       "Shenzhen",
		Experience: "3-5",
		Degree:     "Bachelor",
		Salary:     "20-30K",
		Page:       2,
		PageSize:   10,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := ft.only(t)
	if c.path != PathSearch {
		t.Fatalf("unexpected path %s", c.path)
	}
	want := map[string]string{
		"keywords": "golang", "city": "Shenzhen", "experience": "3-5",
		"degree": "Bachelor", "salary": "20-30K", "page": "2", "pageSize": "10",
	}
	for k, v := range want {
		if c.params[k] != v {
			t.Fatalf("param %s = %q, want %q", k, c.params[k], v)
		}
	}
	if page.Total != 31 || len(page.List) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestClient_GetRecommendedJobsOptionalParams(t *testing.T) {
	ft := &fakeTransport{data: `[{"id":"R1","recommendReason":"close to your city"}]`}
	items, err := New(ft).GetRecommendedJobs(context.Background(), job.RecommendParams{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := ft.only(t)
	if c.path != PathRecommendations || len(c.params) != 0 {
		t.Fatalf("unexpected call %s %v", c.path, c.params)
	}
	if len(items) != 1 || items[0].RecommendReason == "" {
		t.Fatalf("expected recommendReason, got %+v", items)
	}
}

func TestClient_GetFavoriteJobs(t *testing.T) {
	ft := &fakeTransport{data: `[{"id":"F1","isFavorite":true}]`}
	items, err := New(ft).GetFavoriteJobs(context.Background(), job.FavoriteFilter{Page: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c := ft.only(t)
	if c.method != http.MethodGet || c.path != PathFavoriteList || c.params["page"] != "1" {
		t.Fatalf("unexpected call %s %s %v", c.method, c.path, c.params)
	}
	if len(items) != 1 || !items[0].IsFavorite {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestClient_ErrorsPassThroughUnmodified(t *testing.T) {
	netErr := &transport.NetworkError{Method: http.MethodGet, Path: PathSearch, Err: errors.New("dial tcp: refused")}
	ft := &fakeTransport{err: netErr}

	_, err := New(ft).SearchJobs(context.Background(), job.SearchParams{})
	if err != netErr {
		t.Fatalf("expected the transport error itself, got %v", err)
	}
	if len(ft.calls) != 1 {
		t.Fatalf("expected no retry, got %d calls", len(ft.calls))
	}
}
