// Package scheduler runs the periodic housekeeping of the dashboard:
// expired sessions and idle workspaces are dropped on a cron schedule.
package scheduler

import (
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"
)

const DefaultSpec = "@every 1m"

// Task removes stale entries and returns how many it removed.
type Task struct {
	Name string
	Run  func() int
}

type Sweeper struct {
	cron   *cron.Cron
	spec   string
	tasks  []Task
	logger *log.Logger
}

func NewSweeper(spec string, logger *log.Logger) *Sweeper {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSpec
	}
	return &Sweeper{
		cron:   cron.New(),
		spec:   spec,
		logger: logger,
	}
}

func (s *Sweeper) Add(name string, run func() int) {
	if run == nil {
		return
	}
	s.tasks = append(s.tasks, Task{Name: name, Run: run})
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	if s.logger != nil {
		s.logger.Printf("[Sweeper] started spec=%q tasks=%d", s.spec, len(s.tasks))
	}
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	if s.logger != nil {
		s.logger.Printf("[Sweeper] stopped")
	}
}

func (s *Sweeper) RunOnce() {
	for _, t := range s.tasks {
		n := t.Run()
		if n > 0 && s.logger != nil {
			s.logger.Printf("[Sweeper] task=%s removed=%d", t.Name, n)
		}
	}
}
