// Package session holds the dashboard's logged-in user state. The
// navigation guard only ever reads the role from it.
package session

import (
	"context"
	"errors"
	"time"
)

type RoleID int

const (
	RoleNone  RoleID = 0
	RoleAdmin RoleID = 1
)

// RoleProvider exposes the role of the current user. An absent user
// reports RoleNone.
type RoleProvider interface {
	CurrentRole() RoleID
}

// RoleFunc adapts a function to RoleProvider.
type RoleFunc func() RoleID

func (f RoleFunc) CurrentRole() RoleID {
	if f == nil {
		return RoleNone
	}
	return f()
}

// Static is a fixed role, mostly useful for tools and tests.
type Static RoleID

func (s Static) CurrentRole() RoleID { return RoleID(s) }

var (
	ErrNotFound = errors.New("session not found")
	ErrInvalid  = errors.New("invalid session")
)

type State struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	RoleID      RoleID    `json:"roleId"`
	AccessToken string    `json:"accessToken"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// CurrentRole is nil-safe so a missing session can be passed as a provider.
func (s *State) CurrentRole() RoleID {
	if s == nil {
		return RoleNone
	}
	return s.RoleID
}

func (s *State) IsAdmin() bool {
	return s.CurrentRole() == RoleAdmin
}

func (s *State) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Store interface {
	Put(ctx context.Context, st State) error
	Get(ctx context.Context, id string) (State, error)
	Delete(ctx context.Context, id string) error
}
