package app

import (
	"context"
	"io"
	"log"
	"time"

	"jobdash/internal/config"
	"jobdash/internal/dashboard"
	"jobdash/internal/jobapi"
	"jobdash/internal/pkg/jwt"
	"jobdash/internal/router"
	"jobdash/internal/scheduler"
	"jobdash/internal/session"
	"jobdash/internal/transport"
	"jobdash/internal/ws"
)

type Container struct {
	Config config.Config
	Logger *log.Logger

	Sessions   session.Store
	Tokens     jwt.Service
	API        *jobapi.Client
	Routes     *router.Table
	Workspaces *dashboard.Workspaces
	Jobs       *dashboard.Jobs
	Hub        *ws.Hub
	Sweeper    *scheduler.Sweeper

	memSessions *session.MemoryStore
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, mem, err := session.Open(ctx, cfg.Redis.URL, logger)
	if err != nil {
		return nil, err
	}

	tr, err := transport.NewHTTPTransport(cfg.JobsAPI.BaseURL, cfg.JobsAPI.Timeout, logger)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	table, err := router.Default(dashboard.Views())
	if err != nil {
		closeStore(store)
		return nil, err
	}

	hub := ws.NewHub(logger)
	api := jobapi.New(tr)
	workspaces := dashboard.NewWorkspaces(table, cfg.Session.TTL, logger)

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		Sessions:    store,
		Tokens:      jwt.NewHMACService(cfg.Auth.AccessSecret, cfg.Session.TTL),
		API:         api,
		Routes:      table,
		Workspaces:  workspaces,
		Jobs:        dashboard.NewJobs(api, hub, logger),
		Hub:         hub,
		Sweeper:     scheduler.NewSweeper(cfg.Schedule.SweepSpec, logger),
		memSessions: mem,
	}
	c.registerSweeps()
	return c, nil
}

func (c *Container) registerSweeps() {
	if c.memSessions != nil {
		c.Sweeper.Add("sessions", func() int {
			ids := c.memSessions.Sweep()
			for _, id := range ids {
				c.Workspaces.Close(id)
			}
			return len(ids)
		})
	}
	c.Sweeper.Add("workspaces", c.Workspaces.Sweep)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	c.Hub.Stop()
	return closeStore(c.Sessions)
}

func closeStore(s session.Store) error {
	if cl, ok := s.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
