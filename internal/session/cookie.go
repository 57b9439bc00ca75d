package session

import (
	"net/http"
	"strings"
)

// CookieResolver looks up the session named by a request cookie.
type CookieResolver struct {
	Store  Store
	Cookie string
}

func (c CookieResolver) Resolve(r *http.Request) (State, error) {
	ck, err := r.Cookie(c.Cookie)
	if err != nil {
		return State{}, ErrNotFound
	}
	id := strings.TrimSpace(ck.Value)
	if id == "" {
		return State{}, ErrNotFound
	}
	return c.Store.Get(r.Context(), id)
}
