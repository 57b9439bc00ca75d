package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"
)

// Transport issues requests against the jobs backend and decodes the data
// member of its response envelope into out. out may be nil.
type Transport interface {
	Get(ctx context.Context, path string, params map[string]string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenKey struct{}

// WithToken attaches the backend access token forwarded on every request
// made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

func tokenFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

type HTTPTransport struct {
	client *client.Client
	logger *log.Logger
}

func NewHTTPTransport(baseURL string, timeout time.Duration, logger *log.Logger) (*HTTPTransport, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("empty jobs API base URL")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cc := client.New()
	cc.SetBaseURL(baseURL)
	cc.SetTimeout(timeout)

	return &HTTPTransport{client: cc, logger: logger}, nil
}

func (t *HTTPTransport) Get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := t.client.Get(path, client.Config{
		Ctx:    ctx,
		Param:  params,
		Header: t.headers(ctx),
	})
	if err != nil {
		t.logf("[Transport] GET %s failed err=%v", path, err)
		return &NetworkError{Method: http.MethodGet, Path: path, Err: err}
	}
	defer resp.Close()

	return t.decode(http.MethodGet, path, resp.StatusCode(), resp.Body(), out)
}

func (t *HTTPTransport) Post(ctx context.Context, path string, body any, out any) error {
	resp, err := t.client.Post(path, client.Config{
		Ctx:    ctx,
		Body:   body,
		Header: t.headers(ctx),
	})
	if err != nil {
		t.logf("[Transport] POST %s failed err=%v", path, err)
		return &NetworkError{Method: http.MethodPost, Path: path, Err: err}
	}
	defer resp.Close()

	return t.decode(http.MethodPost, path, resp.StatusCode(), resp.Body(), out)
}

func (t *HTTPTransport) headers(ctx context.Context) map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if tok := tokenFrom(ctx); tok != "" {
		h["Authorization"] = "Bearer " + tok
	}
	return h
}

func (t *HTTPTransport) decode(method, path string, status int, body []byte, out any) error {
	body = bytes.TrimSpace(body)

	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if status < 200 || status >= 300 {
				return t.apiError(&APIError{Method: method, Path: path, StatusCode: status, Message: truncate(string(body), 256)})
			}
			return t.apiError(&APIError{Method: method, Path: path, StatusCode: status, Malformed: true, Cause: err})
		}
	}

	if status < 200 || status >= 300 {
		return t.apiError(&APIError{Method: method, Path: path, StatusCode: status, Message: env.Message})
	}
	if env.Status != 0 && (env.Status < 200 || env.Status >= 300) {
		return t.apiError(&APIError{Method: method, Path: path, StatusCode: env.Status, Message: env.Message})
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return t.apiError(&APIError{Method: method, Path: path, StatusCode: status, Malformed: true, Cause: err})
	}
	return nil
}

func (t *HTTPTransport) apiError(err *APIError) error {
	t.logf("[Transport] %s %s api error status=%d malformed=%t message=%q", err.Method, err.Path, err.StatusCode, err.Malformed, err.Message)
	return err
}

func (t *HTTPTransport) logf(format string, args ...any) {
	if t == nil || t.logger == nil {
		return
	}
	t.logger.Printf(format, args...)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Transport = (*HTTPTransport)(nil)
