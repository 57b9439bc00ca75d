package middleware

import (
	"errors"
	"log"
	"strings"

	"jobdash/internal/session"

	"github.com/gofiber/fiber/v3"
)

const CtxSessionKey = "session"

// SessionMiddleware loads the session named by the session cookie into the
// request locals.
type SessionMiddleware struct {
	store  session.Store
	cookie string
	logger *log.Logger
}

func NewSessionMiddleware(store session.Store, cookie string, logger *log.Logger) *SessionMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionMiddleware{store: store, cookie: cookie, logger: logger}
}

func (m *SessionMiddleware) CookieName() string {
	return m.cookie
}

// Optional attaches the session when there is one and never rejects.
func (m *SessionMiddleware) Optional() fiber.Handler {
	return func(c fiber.Ctx) error {
		if st, err := m.load(c); err == nil {
			c.Locals(CtxSessionKey, st)
		}
		return c.Next()
	}
}

// Required rejects requests without a live session.
func (m *SessionMiddleware) Required() fiber.Handler {
	return func(c fiber.Ctx) error {
		st, err := m.load(c)
		if err != nil {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		c.Locals(CtxSessionKey, st)
		return c.Next()
	}
}

func (m *SessionMiddleware) load(c fiber.Ctx) (session.State, error) {
	id := strings.TrimSpace(c.Cookies(m.cookie))
	if id == "" {
		return session.State{}, session.ErrNotFound
	}

	st, err := m.store.Get(c.Context(), id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			m.logger.Printf("[Session] lookup failed err=%v", err)
		}
		return session.State{}, err
	}
	return st, nil
}

func SessionFrom(c fiber.Ctx) (session.State, bool) {
	st, ok := c.Locals(CtxSessionKey).(session.State)
	return st, ok
}
