package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"stf/internal/domain"
	"stf/internal/engine"
	"stf/internal/session"
)

// ReporterPanel is the interactive reporter: the annotated tree on the left,
// run context and the selected test on the right.
type ReporterPanel struct {
	logger     *zap.Logger
	showHidden bool
}

// NewReporterPanel creates a new ReporterPanel
func NewReporterPanel(showHidden bool, logger *zap.Logger) *ReporterPanel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReporterPanel{logger: logger, showHidden: showHidden}
}

// View runs the panel. Every session event is applied on the tview event
// loop, so the session never sees concurrent calls.
func (p *ReporterPanel) View(ctx context.Context, s *session.Session, changes <-chan struct{}) error {
	app := tview.NewApplication()
	showHidden := p.showHidden
	var entries []engine.Entry
	var lastErr error

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 5, 0, false).
		AddItem(detailsView, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 1, false)

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(entries) {
			e := entries[index]
			detailsView.SetText(DetailsText(e, s.Outcomes()[e.ID], s.View()))
		} else {
			detailsView.SetText("")
		}
	}

	refresh := func() {
		view := s.View()
		current := list.GetCurrentItem()
		entries = view.Annotated.Visible(showHidden)
		outcomes := s.Outcomes()

		list.Clear()
		for _, e := range entries {
			list.AddItem(strings.Repeat("  ", e.Depth)+EntryText(e, outcomes[e.ID]), "", 0, nil)
		}
		if current >= len(entries) {
			current = len(entries) - 1
		}
		if current >= 0 {
			list.SetCurrentItem(current)
		}

		statsView.SetText(StatsText(view, showHidden, lastErr))
		headerView.SetText(fmt.Sprintf(" %s | ↑↓ navigate, [yellow]space[white] toggle in filter, [yellow]d[white] dismiss, [yellow]h[white] hidden, [yellow]q[white] quit ",
			view.Annotated.Tree.Title()))
		updateDetails()
	}

	apply := func(ev session.Event) {
		if _, err := s.Apply(ctx, ev); err != nil {
			p.logger.Error("apply event", zap.String("event", fmt.Sprintf("%T", ev)), zap.Error(err))
			lastErr = err
		} else {
			lastErr = nil
		}
		refresh()
	}

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				app.Stop()
				return nil
			case 'h', 'H':
				showHidden = !showHidden
				refresh()
				return nil
			case 'd', 'D':
				view := s.View()
				apply(session.FilterDismissed{RunID: view.Context.RunID})
				return nil
			case ' ':
				index := list.GetCurrentItem()
				if index >= 0 && index < len(entries) {
					view := s.View()
					ids := ToggleInFilter(view.Context.Filter, view.Annotated, entries[index])
					apply(session.FilterUpdated{RunID: view.Context.RunID, IDs: ids})
				}
				return nil
			}
		}
		return event
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				app.Stop()
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				app.QueueUpdateDraw(func() {
					if _, changed, err := s.Resync(ctx); err != nil {
						p.logger.Error("resync filter", zap.Error(err))
						lastErr = err
						refresh()
					} else if changed {
						p.logger.Debug("filter changed on disk")
						lastErr = nil
						refresh()
					}
				})
			}
		}
	}()

	refresh()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// ToggleInFilter returns the filter ids after adding or removing the tests
// under e. Toggling a suite toggles all of its tests together.
func ToggleInFilter(fs domain.FilterSet, a *engine.Annotated, e engine.Entry) []string {
	next := fs.Clone()
	if next == nil {
		next = domain.FilterSet{}
	}

	var ids []string
	if e.Kind == domain.KindTest {
		ids = []string{e.ID}
	} else {
		for _, i := range a.Tree.Descendants(e.Index) {
			if a.Tree.Kind(i) == domain.KindTest {
				ids = append(ids, a.Tree.ID(i))
			}
		}
	}

	all := len(ids) > 0
	for _, id := range ids {
		if !next.Contains(id) {
			all = false
			break
		}
	}
	for _, id := range ids {
		if all {
			delete(next, id)
		} else {
			next[id] = struct{}{}
		}
	}
	return next.IDs()
}

// EntryText renders an entry with tview color tags
func EntryText(e engine.Entry, outcome domain.Outcome) string {
	label := tview.Escape(e.Label())
	if e.Kind == domain.KindSuite {
		if e.Hidden {
			return "[gray]" + label + "[white]"
		}
		return "[darkcyan]" + label + "[white]"
	}

	switch {
	case e.Annotation == domain.SkippedBrowser, e.Annotation == domain.ExcludedByMarker:
		return "[gray]- " + label + "[white]"
	case e.Hidden:
		return "[gray]· " + label + "[white]"
	}

	switch outcome {
	case domain.Passed:
		return "[green]✓[white] " + label
	case domain.Failed:
		return "[red]✗[white] " + label
	default:
		return "[yellow]○[white] " + label
	}
}

// StatsText renders the run context and counters shown above the details
func StatsText(view session.View, showHidden bool, err error) string {
	var b strings.Builder
	s := view.Summary

	runID := view.Context.RunID
	if runID == "" {
		runID = "-"
	}
	fmt.Fprintf(&b, "[cyan]run:[white] %s  [cyan]browser:[white] %s\n", tview.Escape(runID), tview.Escape(view.Context.Browser))
	fmt.Fprintf(&b, "[green]passed: %d[white]  [red]failed: %d[white]  [yellow]pending: %d[white]\n", s.Pass, s.Fail, s.Pending)
	if view.Context.Filter.Active() {
		fmt.Fprintf(&b, "[darkcyan]%s[white] filtered", s.Badge())
		if showHidden {
			b.WriteString(" (showing hidden)")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("[gray]no filter[white]\n")
	}
	if err != nil {
		fmt.Fprintf(&b, "[red]%s[white]\n", tview.Escape(err.Error()))
	}
	return b.String()
}

// DetailsText renders the selected entry
func DetailsText(e engine.Entry, outcome domain.Outcome, view session.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]%s:[white] %s\n\n", e.Kind, tview.Escape(e.ID))
	fmt.Fprintf(&b, "[cyan]annotation:[white] %s\n", e.Annotation)
	if e.Kind == domain.KindTest {
		fmt.Fprintf(&b, "[cyan]outcome:[white] %s\n", outcome)
	}

	t := view.Annotated.Tree
	if m := t.Marker(e.Index); m != domain.MarkerNone {
		fmt.Fprintf(&b, "[cyan]marker:[white] .%s\n", m)
	}
	if browsers := t.Browsers(e.Index); len(browsers) > 0 {
		fmt.Fprintf(&b, "[cyan]browsers:[white] %s\n", tview.Escape(strings.Join(browsers, ", ")))
	}
	if view.Context.Filter.Contains(e.ID) {
		b.WriteString("[darkcyan]in filter set[white]\n")
	}
	return b.String()
}

var _ Viewer = (*ReporterPanel)(nil)
