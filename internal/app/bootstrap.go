package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"jobdash/internal/config"
	"jobdash/internal/delivery/http/handler"
	"jobdash/internal/delivery/http/middleware"
	"jobdash/internal/delivery/http/routes"
	"jobdash/internal/session"
	"jobdash/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
	// WS is nil when no websocket port is configured.
	WS *http.Server
}

func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, WS: newWSServer(c)}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.New(log.Writer(), "", log.LstdFlags|log.Lmicroseconds)

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	go c.Hub.Run()
	if err := c.Sweeper.Start(); err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	cleanup := func() error {
		c.Sweeper.Stop()
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	cfg := c.Config
	sessMw := middleware.NewSessionMiddleware(c.Sessions, cfg.Session.CookieName, c.Logger)

	routes.NewRegistry(
		handler.NewHealthHandler(cfg.App.AppName, cfg.App.Environment),
		handler.NewViewHandler(c.Workspaces),
		handler.NewSessionHandler(c.Tokens, c.Sessions, c.Workspaces, handler.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.App.Environment == "production",
		}, c.Logger),
		handler.NewJobsHandler(c.Jobs, c.Workspaces),
		sessMw,
	).Register(app)
}

func newWSServer(c *Container) *http.Server {
	port := strings.TrimSpace(c.Config.App.WSPort)
	if port == "" {
		return nil
	}
	addr, err := ListenAddr(port)
	if err != nil {
		return nil
	}

	resolver := session.CookieResolver{Store: c.Sessions, Cookie: c.Config.Session.CookieName}
	return &http.Server{
		Addr:              addr,
		Handler:           ws.Mux(ws.NewHandler(c.Hub, resolver, c.Logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ServeWS runs the websocket listener until it is shut down.
func (a *App) ServeWS() error {
	if a.WS == nil {
		return nil
	}
	if err := a.WS.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
