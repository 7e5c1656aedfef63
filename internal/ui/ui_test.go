package ui

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stf/internal/aggregate"
	"stf/internal/config"
	"stf/internal/discovery"
	"stf/internal/domain"
	"stf/internal/engine"
	"stf/internal/session"
	"stf/internal/tree/treetest"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func scopedView(t *testing.T, ids ...string) session.View {
	t.Helper()
	rc := domain.RunContext{RunID: "123", Browser: "electron", Filter: domain.NewFilterSet(ids...)}
	a, err := engine.Compute(treetest.NestedSuites(t), rc)
	require.NoError(t, err)
	return session.View{
		Annotated: a,
		Summary:   aggregate.Aggregate(a, treetest.NestedSuitesOutcomes()),
		Context:   a.Context,
	}
}

func TestFormatter_PrintAnnotated(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(config.New(), discovery.NewParser())
	f.SetOutput(&buf)

	view := scopedView(t, "s1 t4")
	f.PrintAnnotated(view.Annotated, treetest.NestedSuitesOutcomes(), view.Summary, false)

	out := buf.String()
	assert.Contains(t, out, "test.cy.js\n")
	assert.Contains(t, out, "    ✗ t4\n")
	assert.NotContains(t, out, "t1")
	assert.Contains(t, out, "passed: 0  failed: 1  pending: 0  [1 / 4 tests]")

	buf.Reset()
	f.PrintAnnotated(view.Annotated, treetest.NestedSuitesOutcomes(), view.Summary, true)
	assert.Contains(t, buf.String(), "  · t1\n")
}

func TestFormatter_PrintReports(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(config.New(), discovery.NewParser())
	f.SetOutput(&buf)

	reports := []domain.Report{
		{Meta: domain.ReportMeta{Spec: "test.cy.js", RunID: "123", Badge: "1 / 4 tests",
			Summary: domain.Summary{Fail: 1, Included: 1, Total: 4}}},
		{Meta: domain.ReportMeta{Spec: "a-very-long-spec-title-that-overflows.cy.js", Badge: "2 / 2 tests",
			Summary: domain.Summary{Pass: 2, Included: 2, Total: 2}}},
	}
	f.PrintReports(reports, 1500*time.Millisecond, 2)

	out := buf.String()
	assert.Contains(t, out, "Scoped Filter Report")
	assert.Contains(t, out, "│ test.cy.js                │ 1 / 4 tests  │ 0    │ 1    │ 0       │")
	assert.Contains(t, out, "a-very-long-spec-title-t…")
	assert.Contains(t, out, "Evaluated 2 spec(s) | 2 worker(s) | 1.50s")
	assert.Contains(t, out, "Run: 123")
	assert.Contains(t, out, "✗ 3 / 6 tests, 1 failed")
}

func TestFormatter_PrintFilter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(config.New(), discovery.NewParser())
	f.SetOutput(&buf)

	f.PrintFilter("123", domain.NewFilterSet("t3", "s1 t4"))
	assert.Equal(t, "Run 123 filters 2 test(s):\n├── s1 t4\n└── t3\n", buf.String())

	buf.Reset()
	f.PrintFilter("124", nil)
	assert.Equal(t, "No filter set stored for run 124\n", buf.String())
}

func TestFormatter_PrintSpecList(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.New()
	cfg.ProjectPath = "../../testdata"
	f := NewFormatter(cfg, discovery.NewParser())
	f.SetOutput(&buf)

	specs := []string{"../../testdata/specs/skip-and-only.spec.yaml", "../../testdata/specs/browsers.spec.yaml"}
	require.NoError(t, f.PrintSpecList(specs, false))
	assert.Equal(t, "Found 2 spec file(s):\n├── specs/skip-and-only.spec.yaml\n└── specs/browsers.spec.yaml\n", buf.String())

	buf.Reset()
	require.NoError(t, f.PrintSpecList(specs, true))
	out := buf.String()
	assert.Contains(t, out, "│   t1 .only\n")
	assert.Contains(t, out, "│   t2 .skip\n")
	assert.Contains(t, out, "    s1 [firefox]\n")
	assert.Contains(t, out, "      t2 [chrome]\n")
}

func TestEntryText(t *testing.T) {
	tests := []struct {
		name     string
		entry    engine.Entry
		outcome  domain.Outcome
		expected string
	}{
		{"passed", engine.Entry{Title: "t1", Kind: domain.KindTest}, domain.Passed, "[green]✓[white] t1"},
		{"failed", engine.Entry{Title: "t2", Kind: domain.KindTest}, domain.Failed, "[red]✗[white] t2"},
		{"pending", engine.Entry{Title: "t3", Kind: domain.KindTest}, domain.NotYetRun, "[yellow]○[white] t3"},
		{"browser skip", engine.Entry{Title: "t4", Kind: domain.KindTest, Annotation: domain.SkippedBrowser}, domain.NotYetRun,
			"[gray]- t4 (skipped due to browser)[white]"},
		{"hidden test", engine.Entry{Title: "t5", Kind: domain.KindTest, Annotation: domain.ExcludedByFilter, Hidden: true}, domain.Passed,
			"[gray]· t5[white]"},
		{"suite", engine.Entry{Title: "s1", Kind: domain.KindSuite}, domain.NotYetRun, "[darkcyan]s1[white]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EntryText(tt.entry, tt.outcome))
		})
	}
}

func TestStatsText(t *testing.T) {
	out := StatsText(scopedView(t, "s1 t4"), true, nil)
	assert.Contains(t, out, "run:[white] 123")
	assert.Contains(t, out, "[red]failed: 1[white]")
	assert.Contains(t, out, "1 / 4 tests[white] filtered (showing hidden)")

	out = StatsText(scopedView(t), false, assert.AnError)
	assert.Contains(t, out, "no filter")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestDetailsText(t *testing.T) {
	view := scopedView(t, "s1 t4")
	var t4 engine.Entry
	for _, e := range view.Annotated.Entries() {
		if e.ID == "s1 t4" {
			t4 = e
		}
	}

	out := DetailsText(t4, domain.Failed, view)
	assert.Contains(t, out, "test:[white] s1 t4")
	assert.Contains(t, out, "annotation:[white] included")
	assert.Contains(t, out, "outcome:[white] failed")
	assert.Contains(t, out, "in filter set")
}

func TestToggleInFilter(t *testing.T) {
	view := scopedView(t)
	entries := view.Annotated.Entries()
	byID := make(map[string]engine.Entry)
	for _, e := range entries {
		byID[e.ID] = e
	}

	ids := ToggleInFilter(nil, view.Annotated, byID["t1"])
	assert.Equal(t, []string{"t1"}, ids)

	ids = ToggleInFilter(domain.NewFilterSet(ids...), view.Annotated, byID["s1"])
	assert.Equal(t, []string{"s1 t4", "t1"}, ids)

	ids = ToggleInFilter(domain.NewFilterSet(ids...), view.Annotated, byID["s1"])
	assert.Equal(t, []string{"t1"}, ids)

	ids = ToggleInFilter(domain.NewFilterSet(ids...), view.Annotated, byID["t1"])
	assert.Empty(t, ids)
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressBar(2, &buf)
	p.Update(1, 3, 0)
	p.Update(2, 4, 1)
	p.Finish()

	assert.Contains(t, buf.String(), "Evaluating specs")
	assert.Contains(t, buf.String(), "passed: 0")
}
