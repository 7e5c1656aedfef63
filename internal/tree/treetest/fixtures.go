// Package treetest provides the spec trees shared by package tests.
package treetest

import (
	"fmt"
	"testing"

	"stf/internal/domain"
	"stf/internal/tree"
)

// NestedSuites is the four-leaf fixture: t1, t2, t3 and s1 > t4.
func NestedSuites(t testing.TB) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder("test.cy.js")
	b.Test(tree.Root, "t1")
	b.Test(tree.Root, "t2")
	b.Test(tree.Root, "t3")
	s1 := b.Suite(tree.Root, "s1")
	b.Test(s1, "t4")
	return mustBuild(t, b)
}

// NestedSuitesOutcomes are the outcomes recorded for a full NestedSuites run.
func NestedSuitesOutcomes() map[string]domain.Outcome {
	return map[string]domain.Outcome{
		"t1":    domain.Passed,
		"t2":    domain.Failed,
		"t3":    domain.Passed,
		"s1 t4": domain.Failed,
	}
}

// SkipAndOnly marks t1 only and t2 skip, with t3 and s1 > t4 unmarked.
func SkipAndOnly(t testing.TB) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder("skip-and-only.cy.js")
	b.Test(tree.Root, "t1", tree.Only())
	b.Test(tree.Root, "t2", tree.Skip())
	b.Test(tree.Root, "t3")
	s1 := b.Suite(tree.Root, "s1")
	b.Test(s1, "t4")
	return mustBuild(t, b)
}

// SkipAndOnlyOutcomes are the outcomes recorded for SkipAndOnly.
func SkipAndOnlyOutcomes() map[string]domain.Outcome {
	return map[string]domain.Outcome{
		"t1":    domain.Failed,
		"t3":    domain.Failed,
		"s1 t4": domain.Failed,
	}
}

// Browsers restricts t1 and s1 to firefox while s1 > t2 re-allows chrome.
func Browsers(t testing.TB) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder("browsers.cy.js")
	b.Test(tree.Root, "t1", tree.WithBrowsers("firefox"))
	s1 := b.Suite(tree.Root, "s1", tree.WithBrowsers("firefox"))
	b.Test(s1, "t2", tree.WithBrowsers("chrome"))
	b.Test(s1, "t3")
	return mustBuild(t, b)
}

// DomainChange is the fixture whose t2 and t3 navigate to another origin.
func DomainChange(t testing.TB) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder("domain-change.cy.js")
	b.Test(tree.Root, "t1")
	b.Test(tree.Root, "t2")
	b.Test(tree.Root, "t3")
	return mustBuild(t, b)
}

// LotsOfTests builds n top-level tests titled test1..testN.
func LotsOfTests(t testing.TB, n int) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder("lots-of-tests.cy.js")
	for i := 1; i <= n; i++ {
		b.Test(tree.Root, fmt.Sprintf("test%d", i))
	}
	return mustBuild(t, b)
}

func mustBuild(t testing.TB, b *tree.Builder) *tree.Tree {
	t.Helper()
	tr, err := b.Build()
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return tr
}
