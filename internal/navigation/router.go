// Package navigation holds the section router: the state container that
// tracks which dashboard section is active, resolves free-form navigation
// requests through the alias table, and computes structural back targets.
//
// The router keeps no history. Back is derived from the active section's
// position in the static hierarchy, so every path into a leaf leaves it the
// same way: leaf, then hub, then overview.
package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/sections"
)

// Cause records which operation produced a transition.
type Cause int

const (
	CauseNavigate Cause = iota
	CauseBack
	CauseHome
)

// String returns the string representation of the cause
func (c Cause) String() string {
	switch c {
	case CauseNavigate:
		return "navigate"
	case CauseBack:
		return "back"
	case CauseHome:
		return "home"
	default:
		return "unknown"
	}
}

// MarshalText encodes the cause by name.
func (c Cause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Event describes one change of the active section.
type Event struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Cause     Cause     `json:"cause"`
	Timestamp time.Time `json:"timestamp"`
}

// Router owns the active section of one dashboard session.
type Router struct {
	aliases  *sections.AliasTable
	logger   logging.Logger
	active   string
	watchers []chan Event
	closed   bool
	mutex    sync.RWMutex
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for transitions.
func WithLogger(logger logging.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInitial starts the router somewhere other than the overview. The value
// goes through the same resolution as Navigate.
func WithInitial(requested string) Option {
	return func(r *Router) {
		r.active, _ = r.aliases.Resolve(requested)
	}
}

// NewRouter creates a router positioned on the overview. A nil alias table
// gets the built-in aliases.
func NewRouter(aliases *sections.AliasTable, opts ...Option) *Router {
	if aliases == nil {
		aliases = sections.NewAliasTable()
	}
	r := &Router{
		aliases: aliases,
		logger:  logging.NewNopLogger(),
		active:  sections.Overview.String(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Navigate makes requested the active section. Input is matched
// case-insensitively against the alias table; anything unmatched is stored
// verbatim and later renders as the overview. Navigate never fails.
func (r *Router) Navigate(requested string) {
	id, s := r.aliases.Resolve(requested)
	if s == sections.Unknown {
		r.logger.Info(context.Background(), "Unknown section requested, keeping it verbatim",
			"requested", logging.SanitizeForLog(requested))
	}
	r.transition(id, CauseNavigate)
}

// Back moves one level up the hierarchy: a leaf goes to its hub, everything
// else goes to the overview.
func (r *Router) Back() {
	r.mutex.RLock()
	current := r.active
	r.mutex.RUnlock()

	r.transition(BackTarget(current).String(), CauseBack)
}

// Home returns to the overview.
func (r *Router) Home() {
	r.transition(sections.Overview.String(), CauseHome)
}

// Active returns the active identifier exactly as stored. It may name no
// registered section.
func (r *Router) Active() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.active
}

// Section returns the active section, or Unknown when the active identifier
// is not registered.
func (r *Router) Section() sections.Section {
	s, _ := sections.Parse(r.Active())
	return s
}

// Breadcrumbs returns the structural trail to the active section.
func (r *Router) Breadcrumbs() []sections.Section {
	return Breadcrumbs(r.Section())
}

// State returns a snapshot of the router suitable for encoding.
func (r *Router) State() State {
	return newState(r.Active())
}

func (r *Router) transition(to string, cause Cause) {
	r.mutex.Lock()
	from := r.active
	r.active = to
	if from == to || r.closed {
		r.mutex.Unlock()
		return
	}

	event := Event{
		From:      from,
		To:        to,
		Cause:     cause,
		Timestamp: time.Now(),
	}
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
	r.mutex.Unlock()

	r.logger.Debug(context.Background(), "Section changed",
		"from", logging.SanitizeForLog(from),
		"to", logging.SanitizeForLog(to),
		"cause", cause.String())
}

// Watch returns a channel that receives transitions. Events are dropped for
// a watcher whose buffer is full.
func (r *Router) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, 16)
	if r.closed {
		close(ch)
		return ch
	}
	r.watchers = append(r.watchers, ch)
	return ch
}

// Unwatch removes a watcher channel and closes it
func (r *Router) Unwatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Close closes every watcher channel. The router stays usable but no longer
// publishes events.
func (r *Router) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, watcher := range r.watchers {
		close(watcher)
	}
	r.watchers = nil
}

// BackTarget is the section Back moves to from id. Leaves map to their hub;
// hubs, the overview, standalone sections and unregistered ids all map to the
// overview.
func BackTarget(id string) sections.Section {
	s, _ := sections.Parse(id)
	if hub, ok := s.Parent(); ok {
		return hub
	}
	return sections.Overview
}

// Breadcrumbs returns overview > hub > leaf for s. Unknown renders as the
// overview, so its trail is just the overview.
func Breadcrumbs(s sections.Section) []sections.Section {
	switch s.Kind() {
	case sections.KindLeaf:
		hub, _ := s.Parent()
		return []sections.Section{sections.Overview, hub, s}
	case sections.KindHub, sections.KindStandalone:
		return []sections.Section{sections.Overview, s}
	default:
		return []sections.Section{sections.Overview}
	}
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// State is the encoded view of a router.
type State struct {
	// Active is the stored identifier, possibly unregistered.
	Active string `json:"active"`
	// Section is the section that renders: Active when registered, else
	// the overview.
	Section     string  `json:"section"`
	Title       string  `json:"title"`
	Known       bool    `json:"known"`
	Kind        string  `json:"kind"`
	Parent      string  `json:"parent,omitempty"`
	Back        string  `json:"back"`
	Breadcrumbs []Crumb `json:"breadcrumbs"`
}

func newState(active string) State {
	s, known := sections.Parse(active)
	rendered := s
	if !known {
		rendered = sections.Overview
	}

	state := State{
		Active:  active,
		Section: rendered.String(),
		Title:   rendered.Title(),
		Known:   known,
		Kind:    rendered.Kind().String(),
		Back:    BackTarget(active).String(),
	}
	if parent, ok := s.Parent(); ok {
		state.Parent = parent.String()
	}
	for _, crumb := range Breadcrumbs(s) {
		state.Breadcrumbs = append(state.Breadcrumbs, Crumb{ID: crumb.String(), Title: crumb.Title()})
	}
	return state
}
