package router

import "jobdash/internal/session"

// Landing is where authenticated non-admin users are sent.
const Landing = "/index"

type Outcome int

const (
	Proceed Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide is the guard's pure decision for target. Admin-only routes proceed
// only for RoleAdmin; everyone else, including a caller without a session,
// is sent to landing.
func Decide(target Match, roles session.RoleProvider, landing string) Decision {
	if !target.RequiresAdmin() {
		return Decision{Outcome: Proceed}
	}
	if currentRole(roles) == session.RoleAdmin {
		return Decision{Outcome: Proceed}
	}
	return Decision{Outcome: Redirect, Location: landing}
}

func currentRole(roles session.RoleProvider) session.RoleID {
	if roles == nil {
		return session.RoleNone
	}
	return roles.CurrentRole()
}

// Next continues a navigation. A guard calls exactly one of its methods.
type Next interface {
	Proceed()
	Redirect(path string)
}

type Guard struct {
	roles   session.RoleProvider
	landing string
}

func NewGuard(roles session.RoleProvider, landing string) *Guard {
	if landing == "" {
		landing = Landing
	}
	return &Guard{roles: roles, landing: landing}
}

func (g *Guard) Decide(to Match) Decision {
	return Decide(to, g.roles, g.landing)
}

// BeforeEach runs for every transition. from is not consulted.
func (g *Guard) BeforeEach(to, from Match, next Next) {
	d := g.Decide(to)
	if d.Outcome == Redirect {
		next.Redirect(d.Location)
		return
	}
	next.Proceed()
}
