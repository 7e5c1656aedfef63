package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"stf/internal/config"
	"stf/internal/discovery"
	"stf/internal/domain"
	"stf/internal/engine"
)

// Formatter formats and displays console output
type Formatter struct {
	config *config.Config
	parser *discovery.Parser
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to the color-aware stdout
func NewFormatter(cfg *config.Config, parser *discovery.Parser) *Formatter {
	return &Formatter{
		config: cfg,
		parser: parser,
		out:    color.Output,
	}
}

// SetOutput redirects the formatter
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

func (f *Formatter) println(s string) {
	fmt.Fprintln(f.out, s)
}

// PrintReports prints one table row per spec followed by the totals
func (f *Formatter) PrintReports(reports []domain.Report, duration time.Duration, workers int) {
	f.println("")
	f.println(color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	f.println(color.CyanString("║                     Scoped Filter Report                      ║"))
	f.println(color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))

	f.println("┌───────────────────────────┬──────────────┬──────┬──────┬─────────┐")
	f.println(fmt.Sprintf("│ %-25s │ %-12s │ %-4s │ %-4s │ %-7s │", "Spec", "Badge", "Pass", "Fail", "Pending"))
	var total domain.Summary
	for _, r := range reports {
		s := r.Meta.Summary
		total.Pass += s.Pass
		total.Fail += s.Fail
		total.Pending += s.Pending
		total.Included += s.Included
		total.Total += s.Total

		f.println("├───────────────────────────┼──────────────┼──────┼──────┼─────────┤")
		f.println(fmt.Sprintf("│ %-25s │ %-12s │ %s │ %s │ %s │",
			truncate(r.Meta.Spec, 25),
			r.Meta.Badge,
			color.GreenString("%-4d", s.Pass),
			color.RedString("%-4d", s.Fail),
			color.YellowString("%-7d", s.Pending),
		))
	}
	f.println("└───────────────────────────┴──────────────┴──────┴──────┴─────────┘")

	f.println(fmt.Sprintf("%s %d spec(s) | %d worker(s) | %.2fs",
		color.WhiteString("Evaluated"), len(reports), workers, duration.Seconds()))
	if len(reports) > 0 && reports[0].Meta.RunID != "" {
		f.println(fmt.Sprintf("%s %s", color.WhiteString("Run:"), reports[0].Meta.RunID))
	}

	f.println("")
	if total.Fail == 0 {
		f.println(color.GreenString("✓ %d / %d tests, no failures", total.Included, total.Total))
	} else {
		f.println(color.RedString("✗ %d / %d tests, %d failed", total.Included, total.Total, total.Fail))
	}
}

// PrintAnnotated prints the annotated tree of one spec with the outcome of
// every shown test, then its summary line.
func (f *Formatter) PrintAnnotated(a *engine.Annotated, outcomes map[string]domain.Outcome, summary domain.Summary, showHidden bool) {
	f.println(color.CyanString(a.Tree.Title()))
	for _, e := range a.Visible(showHidden) {
		f.println(strings.Repeat("  ", e.Depth+1) + EntryLine(e, outcomes[e.ID]))
	}
	f.println("")
	f.println(SummaryLine(summary))
}

// EntryLine renders a single annotated entry without indentation
func EntryLine(e engine.Entry, outcome domain.Outcome) string {
	label := e.Label()
	if e.Kind == domain.KindSuite {
		if e.Hidden {
			return color.HiBlackString(label)
		}
		return color.CyanString(label)
	}

	switch {
	case e.Annotation == domain.SkippedBrowser, e.Annotation == domain.ExcludedByMarker:
		return color.HiBlackString("- %s", label)
	case e.Hidden:
		return color.HiBlackString("· %s", label)
	}

	switch outcome {
	case domain.Passed:
		return color.GreenString("✓ %s", label)
	case domain.Failed:
		return color.RedString("✗ %s", label)
	default:
		return color.YellowString("○ %s", label)
	}
}

// SummaryLine renders the pass/fail/pending counters and the badge
func SummaryLine(s domain.Summary) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		color.GreenString("passed: %d", s.Pass),
		color.RedString("failed: %d", s.Fail),
		color.YellowString("pending: %d", s.Pending),
		color.CyanString("[%s]", s.Badge()))
}

// PrintFilter prints the stored set of one run
func (f *Formatter) PrintFilter(runID string, fs domain.FilterSet) {
	if !fs.Active() {
		f.println(color.YellowString("No filter set stored for run %s", runID))
		return
	}
	f.println(color.GreenString("Run %s filters %d test(s):", runID, len(fs)))
	ids := fs.IDs()
	for i, id := range ids {
		if i == len(ids)-1 {
			f.println("└── " + id)
		} else {
			f.println("├── " + id)
		}
	}
}

// PrintSpecList prints spec files, optionally with their test trees
func (f *Formatter) PrintSpecList(specs []string, showTests bool) error {
	if !showTests {
		f.println(color.GreenString("Found %d spec file(s):", len(specs)))
		for i, spec := range specs {
			f.println(color.CyanString("%s %s", branch(i == len(specs)-1), f.relPath(spec)))
		}
		return nil
	}

	f.println(color.GreenString("Found %d spec file(s) with tests:", len(specs)))
	for i, spec := range specs {
		isLastSpec := i == len(specs)-1
		f.println(color.CyanString("%s %s", branch(isLastSpec), f.relPath(spec)))

		t, err := f.parser.ParseFile(spec)
		if err != nil {
			f.println(color.RedString("Error reading spec %s: %v", spec, err))
			continue
		}

		prefix := "│   "
		if isLastSpec {
			prefix = "    "
		}
		for _, idx := range t.Preorder() {
			n := t.Node(idx)
			line := strings.Repeat("  ", t.Depth(idx)) + n.Title
			if n.Marker != domain.MarkerNone {
				line += color.MagentaString(" .%s", n.Marker)
			}
			if len(n.Browsers) > 0 {
				line += color.BlueString(" [%s]", strings.Join(n.Browsers, ", "))
			}
			if n.IsTest() {
				f.println(prefix + color.YellowString("%s", line))
			} else {
				f.println(prefix + line)
			}
		}

		if !isLastSpec {
			f.println("")
		}
	}
	return nil
}

func (f *Formatter) relPath(path string) string {
	rel, err := filepath.Rel(f.config.ProjectPath, path)
	if err != nil {
		return path
	}
	return rel
}

func branch(last bool) string {
	if last {
		return "└──"
	}
	return "├──"
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
