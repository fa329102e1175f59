package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fleamarket/internal/client/notify"
	"github.com/dmitrijs2005/fleamarket/internal/client/session"
	"github.com/dmitrijs2005/fleamarket/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const maxRedirects = 8

var ErrTooManyRedirects = errors.New("too many redirects")

// Metrics counts guard decisions by outcome.
type Metrics struct {
	Decisions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "fleamarket_client_guard_decisions_total",
			Help: "Route guard decisions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(o.String()).Inc()
}

// Navigator owns the current location.
type Navigator struct {
	mu       sync.Mutex
	table    *Table
	guard    *Guard
	notifier notify.Notifier
	metrics  *Metrics
	log      logging.Logger
	current  Match
}

type NavigatorOption func(*Navigator)

func WithNotifier(n notify.Notifier) NavigatorOption {
	return func(nv *Navigator) { nv.notifier = n }
}

func WithNavigatorMetrics(m *Metrics) NavigatorOption {
	return func(nv *Navigator) { nv.metrics = m }
}

func WithNavigatorLogger(l logging.Logger) NavigatorOption {
	return func(nv *Navigator) { nv.log = l }
}

// NewNavigator starts at the home route.
func NewNavigator(table *Table, view session.View, opts ...NavigatorOption) (*Navigator, error) {
	n := &Navigator{table: table, guard: NewGuard(table, view)}
	for _, opt := range opts {
		opt(n)
	}
	if n.log == nil {
		n.log = logging.Nop()
	}

	home, err := table.Resolve(Location{Path: HomePath})
	if err != nil {
		return nil, err
	}
	n.current = home
	return n, nil
}

// Navigate moves to target. Route redirects are followed first, then the
// guard decides; its redirects are followed the same way. The returned
// decision is the first one the guard made for this navigation. On error
// the current location is unchanged.
func (n *Navigator) Navigate(ctx context.Context, target string) (Decision, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var first *Decision
	for hop := 0; hop < maxRedirects; hop++ {
		loc, err := ParseLocation(target)
		if err != nil {
			return Decision{}, err
		}
		m, err := n.table.Resolve(loc)
		if err != nil {
			return Decision{}, err
		}

		if m.Route.Redirect != "" {
			next, err := ParseLocation(m.Route.Redirect)
			if err != nil {
				return Decision{}, fmt.Errorf("route %s redirect: %w", m.Route.Name, err)
			}
			if len(next.Query) == 0 {
				next.Query = loc.Query
			}
			target = next.FullPath()
			continue
		}

		d := n.guard.Decide(m)
		n.metrics.observe(d.Outcome)
		if d.Notice != "" && n.notifier != nil {
			n.notifier.Notify(ctx, d.Level, d.Notice)
		}
		if first == nil {
			first = &d
		}
		n.log.Debug(ctx, "guard decision", "target", loc.FullPath(), "outcome", d.Outcome.String(), "location", d.Location)

		if d.Outcome == Proceed {
			n.current = m
			return *first, nil
		}
		target = d.Location
	}

	n.log.Warn(ctx, "navigation aborted", "target", target)
	return Decision{}, fmt.Errorf("%w: last target %s", ErrTooManyRedirects, target)
}

// Current returns the full path of the current location.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.Location.FullPath()
}

// CurrentMatch returns the resolved current location.
func (n *Navigator) CurrentMatch() Match {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
