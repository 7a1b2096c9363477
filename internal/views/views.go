// Package views renders dashboard sections as templ components.
//
// Render is the single dispatch point from a section to its view. Anything
// that is not a registered section renders the overview, so a bad identifier
// can never produce a blank page.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/collegedash/internal/sections"
)

// Render returns the view for s. Unknown and out-of-range values render the
// overview.
func Render(s sections.Section) templ.Component {
	switch s {
	case sections.Overview:
		return overviewView()
	case sections.PeopleHub, sections.CurriculumHub, sections.AssessmentHub, sections.ResourcesHub:
		return hubView(s)
	case sections.Tutors, sections.Students, sections.Cohorts, sections.Attendance, sections.Wellbeing,
		sections.Courses, sections.LessonPlans, sections.Timetable, sections.SchemesOfWork,
		sections.Grading, sections.EPATracking, sections.Portfolios, sections.ProgressTracking, sections.ILP,
		sections.Library, sections.Documents, sections.Compliance, sections.Reports:
		return leafView(s)
	case sections.EmployerPortal, sections.CollegeSettings, sections.AIAssistant:
		return standaloneView(s)
	default:
		return overviewView()
	}
}

// RenderID renders the view for a stored identifier, which may be
// unregistered.
func RenderID(id string) templ.Component {
	s, _ := sections.Parse(id)
	return Render(s)
}

// QuickAction is a shortcut shown on the overview. Target is passed to
// navigation as typed, so it may be an alias.
type QuickAction struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// QuickActions are the overview shortcuts.
var QuickActions = []QuickAction{
	{Label: "Take a register", Target: "register"},
	{Label: "Check EPA gateway", Target: "gateway"},
	{Label: "Find a learner", Target: "learners"},
	{Label: "Mark submissions", Target: "marking"},
	{Label: "Run a report", Target: "analytics"},
	{Label: "Ask the assistant", Target: "ai"},
}

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) rawf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

// navButton renders a form that posts target to /navigate.
func (w *writer) navButton(target, label, class string) {
	w.raw(`<form method="post" action="/navigate" class="nav-form">`)
	w.rawf(`<button type="submit" name="section" value="%s" class="%s">`,
		templ.EscapeString(target), templ.EscapeString(class))
	w.text(label)
	w.raw(`</button></form>`)
}

func (w *writer) open(s sections.Section) {
	w.rawf(`<section class="view view-%s" data-section="%s">`, s.Kind(), templ.EscapeString(s.String()))
	w.raw(`<h1>`)
	w.text(s.Title())
	w.raw(`</h1><p class="summary">`)
	w.text(s.Summary())
	w.raw(`</p>`)
}

func (w *writer) close() {
	w.raw(`</section>`)
}

func overviewView() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open(sections.Overview)

		w.raw(`<div class="hubs">`)
		for _, hub := range sections.Hubs() {
			w.raw(`<article class="card hub-card">`)
			w.navButton(hub.String(), hub.Title(), "card-title")
			w.raw(`<p>`)
			w.text(hub.Summary())
			w.rawf(`</p><p class="count">%d sections</p></article>`, len(sections.Leaves(hub)))
		}
		w.raw(`</div>`)

		w.raw(`<div class="standalone"><h2>More</h2><ul>`)
		for _, s := range sections.Standalone() {
			w.raw(`<li>`)
			w.navButton(s.String(), s.Title(), "link")
			w.raw(`</li>`)
		}
		w.raw(`</ul></div>`)

		w.raw(`<div class="quick-actions"><h2>Quick actions</h2><ul>`)
		for _, action := range QuickActions {
			w.raw(`<li>`)
			w.navButton(action.Target, action.Label, "quick-action")
			w.raw(`</li>`)
		}
		w.raw(`</ul></div>`)

		w.close()
		return w.err
	})
}

func hubView(hub sections.Section) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open(hub)

		w.raw(`<ul class="leaves">`)
		for _, leaf := range sections.Leaves(hub) {
			w.raw(`<li>`)
			w.navButton(leaf.String(), leaf.Title(), "leaf-link")
			w.raw(`<span class="leaf-summary">`)
			w.text(leaf.Summary())
			w.raw(`</span></li>`)
		}
		w.raw(`</ul>`)

		w.close()
		return w.err
	})
}

func leafView(leaf sections.Section) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open(leaf)
		hub, _ := leaf.Parent()
		w.raw(`<p class="placement">Part of `)
		w.text(hub.Title())
		w.raw(`.</p><div class="module-content" data-module="`)
		w.text(leaf.String())
		w.raw(`"></div>`)
		w.close()
		return w.err
	})
}

func standaloneView(s sections.Section) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.open(s)
		w.raw(`<div class="module-content" data-module="`)
		w.text(s.String())
		w.raw(`"></div>`)
		w.close()
		return w.err
	})
}
