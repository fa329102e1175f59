package router

import (
	"net/url"

	"github.com/dmitrijs2005/fleamarket/internal/client/notify"
	"github.com/dmitrijs2005/fleamarket/internal/client/session"
	"github.com/dmitrijs2005/fleamarket/internal/common"
)

// Guard notices.
const (
	NoticeLoginRequired = "please log in first"
	NoticeForbidden     = "no access permission"
)

type Outcome int

const (
	Proceed Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the result of one guard evaluation. Location is where the
// navigation ends up. Notice is empty when nothing should be shown.
type Decision struct {
	Outcome  Outcome
	Location string
	Notice   string
	Level    notify.Level
}

// Guard applies route requirements to the session. It never mutates the
// session and never calls the backend.
type Guard struct {
	table *Table
	view  session.View
}

func NewGuard(table *Table, view session.View) *Guard {
	return &Guard{table: table, view: view}
}

// Evaluate resolves target and decides on it. Route redirects are not
// followed; that is the Navigator's job.
func (g *Guard) Evaluate(target string) (Decision, error) {
	loc, err := ParseLocation(target)
	if err != nil {
		return Decision{}, err
	}
	m, err := g.table.Resolve(loc)
	if err != nil {
		return Decision{}, err
	}
	return g.Decide(m), nil
}

// Decide evaluates a resolved route.
func (g *Guard) Decide(m Match) Decision {
	loggedIn := g.view.IsAuthenticated()
	req := m.Route.Requirement

	if req.RequireAuth && !loggedIn {
		q := url.Values{RedirectParam: {m.Location.FullPath()}}
		return Decision{
			Outcome:  RedirectLogin,
			Location: LoginPath + "?" + q.Encode(),
			Notice:   NoticeLoginRequired,
			Level:    notify.Warning,
		}
	}

	if req.RequireAdmin && g.view.Role() != common.RoleAdmin {
		return Decision{Outcome: RedirectHome, Location: HomePath, Notice: NoticeForbidden, Level: notify.Error}
	}

	if loggedIn && (m.Location.Path == LoginPath || m.Location.Path == RegisterPath) {
		return Decision{Outcome: RedirectHome, Location: HomePath}
	}

	return Decision{Outcome: Proceed, Location: m.Location.FullPath()}
}

// RedirectTarget returns the location a login screen should continue to:
// its ?redirect= value, or home.
func RedirectTarget(location string) string {
	loc, err := ParseLocation(location)
	if err != nil {
		return HomePath
	}
	if t := loc.Query.Get(RedirectParam); t != "" {
		return t
	}
	return HomePath
}
