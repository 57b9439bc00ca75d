package routes

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"jobdash/internal/dashboard"
	"jobdash/internal/delivery/http/handler"
	"jobdash/internal/delivery/http/middleware"
	"jobdash/internal/domain/job"
	"jobdash/internal/pkg/jwt"
	"jobdash/internal/router"
	"jobdash/internal/session"
	"jobdash/internal/transport"

	"github.com/gofiber/fiber/v3"
)

const testCookie = "jobdash_sid"

type fakeAPI struct {
	mu        sync.Mutex
	jobs      []job.Job
	hotLimits []int
	favErr    error
}

func (f *fakeAPI) FavoriteJob(context.Context, job.Ref) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return json.RawMessage(`{}`), f.favErr
}

func (f *fakeAPI) UnfavoriteJob(context.Context, job.Ref) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return json.RawMessage(`{}`), f.favErr
}

func (f *fakeAPI) GetJobDetail(_ context.Context, id job.ID) (job.Job, error) {
	if id == "missing" {
		return job.Job{}, &transport.APIError{Method: "GET", Path: "/my/jobs/detail", StatusCode: 404, Message: "job not found"}
	}
	return job.Job{ID: id, JobName: "Detail"}, nil
}

func (f *fakeAPI) GetFavoriteJobs(context.Context, job.FavoriteFilter) ([]job.Job, error) {
	return f.jobs, nil
}

func (f *fakeAPI) GetRecommendedJobs(context.Context, job.RecommendParams) ([]job.Job, error) {
	return f.jobs, nil
}

func (f *fakeAPI) SearchJobs(context.Context, job.SearchParams) (job.Page, error) {
	return job.Page{List: f.jobs, Total: len(f.jobs), Page: 1, PageSize: 10}, nil
}

func (f *fakeAPI) GetHotJobs(_ context.Context, limit int) ([]job.Job, error) {
	f.mu.Lock()
	f.hotLimits = append(f.hotLimits, limit)
	f.mu.Unlock()
	return f.jobs, nil
}

type testServer struct {
	app    *fiber.App
	api    *fakeAPI
	tokens *jwt.HMACService
	store  *session.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	table, err := router.Default(dashboard.Views())
	if err != nil {
		t.Fatalf("load routes: %v", err)
	}

	api := &fakeAPI{jobs: []job.Job{{ID: "J1", JobName: "Go Engineer"}, {ID: "J2", JobName: "SRE"}}}
	store := session.NewMemoryStore()
	tokens := jwt.NewHMACService("test-secret", time.Hour)
	workspaces := dashboard.NewWorkspaces(table, time.Hour, logger)
	jobs := dashboard.NewJobs(api, nil, logger)

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
	NewRegistry(
		handler.NewHealthHandler("jobdash", "test"),
		handler.NewViewHandler(workspaces),
		handler.NewSessionHandler(tokens, store, workspaces, handler.SessionOptions{CookieName: testCookie, TTL: time.Hour}, logger),
		handler.NewJobsHandler(jobs, workspaces),
		middleware.NewSessionMiddleware(store, testCookie, logger),
	).Register(app)

	return &testServer{app: app, api: api, tokens: tokens, store: store}
}

func (s *testServer) do(t *testing.T, method, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sid})
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (s *testServer) login(t *testing.T, userID string, role int) string {
	t.Helper()
	tok, err := s.tokens.GenerateAccessToken(userID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("login: expected 201, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == testCookie && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("login did not set the session cookie")
	return ""
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response, out any) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func TestViews_GuardRedirectsNonAdmin(t *testing.T) {
	s := newTestServer(t)
	sid := s.login(t, "u2", 2)

	resp := s.do(t, http.MethodGet, "/index/user", sid)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/index" {
		t.Fatalf("expected redirect to /index, got %q", loc)
	}
}

func TestViews_GuardRedirectsWithoutSession(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/index/user", "")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/index" {
		t.Fatalf("expected 302 to /index, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestViews_AdminSeesUserManagement(t *testing.T) {
	s := newTestServer(t)
	sid := s.login(t, "u1", 1)

	resp := s.do(t, http.MethodGet, "/index/user", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var view struct {
		Path      string `json:"path"`
		Title     string `json:"title"`
		Component string `json:"component"`
	}
	decode(t, resp, &view)
	if view.Path != "/index/user" || view.Component != "user/User" || view.Title != "User Management" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestViews_LoginAliasAndUnknown(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/login", "")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected /login to redirect to /, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = s.do(t, http.MethodGet, "/index/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSession_LoginMeLogout(t *testing.T) {
	s := newTestServer(t)
	sid := s.login(t, "u1", 1)

	resp := s.do(t, http.MethodGet, "/api/session", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var me struct {
		UserID  string `json:"userId"`
		RoleID  int    `json:"roleId"`
		IsAdmin bool   `json:"isAdmin"`
	}
	decode(t, resp, &me)
	if me.UserID != "u1" || me.RoleID != 1 || !me.IsAdmin {
		t.Fatalf("unexpected session %+v", me)
	}

	resp = s.do(t, http.MethodDelete, "/api/session", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	if s.store.Len() != 0 {
		t.Fatalf("logout must drop the session")
	}

	resp = s.do(t, http.MethodGet, "/api/session", sid)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestSession_RejectsBadToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{"accessToken":"garbage"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestJobs_RequireSession(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/jobs/hot", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestJobs_FavoriteToggleFlow(t *testing.T) {
	s := newTestServer(t)
	sid := s.login(t, "u2", 2)

	resp := s.do(t, http.MethodGet, "/api/jobs/search?keywords=go", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}
	var list struct {
		List []struct {
			ID              string `json:"id"`
			FavoriteLoading bool   `json:"favoriteLoading"`
		} `json:"list"`
		Total int `json:"total"`
	}
	decode(t, resp, &list)
	if len(list.List) != 2 || list.List[0].ID != "J1" {
		t.Fatalf("unexpected list %+v", list)
	}

	var item struct {
		ID              string `json:"id"`
		IsFavorite      bool   `json:"isFavorite"`
		FavoriteLoading bool   `json:"favoriteLoading"`
	}
	resp = s.do(t, http.MethodPost, "/api/jobs/J1/favorite", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("favorite: expected 200, got %d", resp.StatusCode)
	}
	decode(t, resp, &item)
	if item.ID != "J1" || !item.IsFavorite || item.FavoriteLoading {
		t.Fatalf("unexpected item after favorite %+v", item)
	}

	resp = s.do(t, http.MethodPost, "/api/jobs/J1/favorite", sid)
	decode(t, resp, &item)
	if item.IsFavorite {
		t.Fatalf("second toggle must unfavorite")
	}

	s.api.favErr = &transport.NetworkError{Method: "POST", Path: "/my/jobs/collect/addJob", Err: io.ErrUnexpectedEOF}
	resp = s.do(t, http.MethodPost, "/api/jobs/J1/favorite", sid)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 on network failure, got %d", resp.StatusCode)
	}
}

func TestJobs_ToggleUnknownJob(t *testing.T) {
	s := newTestServer(t)
	sid := s.login(t, "u2", 2)

	resp := s.do(t, http.MethodPost, "/api/jobs/J1/favorite", sid)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without a mounted view, got %d", resp.StatusCode)
	}
}

func TestJobs_HotDefaultsAndDetailErrors(t *testing.T) {
	s := newTestServer(t)
	sid := s.login(t, "u2", 2)

	resp := s.do(t, http.MethodGet, "/api/jobs/hot", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hot: expected 200, got %d", resp.StatusCode)
	}
	if len(s.api.hotLimits) != 1 || s.api.hotLimits[0] != 0 {
		t.Fatalf("expected hot limit to be left to the client default, got %v", s.api.hotLimits)
	}

	resp = s.do(t, http.MethodGet, "/api/jobs/hot?limit=abc", sid)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/jobs/missing", sid)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected backend 404 to pass through, got %d", resp.StatusCode)
	}
	env := decode(t, resp, nil)
	if env.Message != "job not found" {
		t.Fatalf("expected backend message, got %q", env.Message)
	}

	resp = s.do(t, http.MethodGet, "/api/jobs/J2", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
