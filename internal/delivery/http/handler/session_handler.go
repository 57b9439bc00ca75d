package handler

import (
	"errors"
	"log"
	"strings"
	"time"

	"jobdash/internal/dashboard"
	"jobdash/internal/delivery/http/middleware"
	"jobdash/internal/pkg/jwt"
	"jobdash/internal/pkg/response"
	"jobdash/internal/session"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// SessionHandler turns an access token issued by the jobs backend into a
// dashboard session cookie.
type SessionHandler struct {
	tokens     jwt.Service
	store      session.Store
	workspaces *dashboard.Workspaces
	cookie     string
	ttl        time.Duration
	secure     bool
	logger     *log.Logger

	now func() time.Time
}

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type loginRequest struct {
	AccessToken string `json:"accessToken"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RoleID    int       `json:"roleId"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewSessionHandler(tokens jwt.Service, store session.Store, workspaces *dashboard.Workspaces, opts SessionOptions, logger *log.Logger) *SessionHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionHandler{
		tokens:     tokens,
		store:      store,
		workspaces: workspaces,
		cookie:     opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		logger:     logger,
		now:        time.Now,
	}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/session", h.Login)
	r.Get("/session", h.Me)
	r.Delete("/session", h.Logout)
}

func (h *SessionHandler) Login(c fiber.Ctx) error {
	token, ok := bearerTokenFromHeader(c.Get("Authorization"))
	if !ok {
		var req loginRequest
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		token = strings.TrimSpace(req.AccessToken)
	}
	if token == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Access token is required", nil, nil)
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		}
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}

	now := h.now().UTC()
	expires := now.Add(h.ttl)
	if exp := claims.Expiry(); !exp.IsZero() && exp.Before(expires) {
		expires = exp
	}

	st := session.State{
		ID:          uuid.NewString(),
		UserID:      claims.UserID,
		RoleID:      session.RoleID(claims.RoleID),
		AccessToken: token,
		CreatedAt:   now,
		ExpiresAt:   expires,
	}
	if err := h.store.Put(c.Context(), st); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	// replace any session this browser still holds
	if old := strings.TrimSpace(c.Cookies(h.cookie)); old != "" {
		h.drop(c, old)
	}
	h.workspaces.Open(st)

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie,
		Value:    st.ID,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	h.logger.Printf("[Session] login user_id=%s role_id=%d", st.UserID, st.RoleID)
	return response.Success(c, fiber.StatusCreated, response.MessageOK, toSessionResponse(st))
}

func (h *SessionHandler) Me(c fiber.Ctx) error {
	st, ok := middleware.SessionFrom(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toSessionResponse(st))
}

func (h *SessionHandler) Logout(c fiber.Ctx) error {
	if st, ok := middleware.SessionFrom(c); ok {
		h.drop(c, st.ID)
		h.logger.Printf("[Session] logout user_id=%s", st.UserID)
	}
	c.ClearCookie(h.cookie)
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *SessionHandler) drop(c fiber.Ctx, id string) {
	if err := h.store.Delete(c.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
		h.logger.Printf("[Session] delete failed err=%v", err)
	}
	h.workspaces.Close(id)
}

func toSessionResponse(st session.State) sessionResponse {
	return sessionResponse{
		ID:        st.ID,
		UserID:    st.UserID,
		RoleID:    int(st.RoleID),
		IsAdmin:   st.IsAdmin(),
		ExpiresAt: st.ExpiresAt,
	}
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
