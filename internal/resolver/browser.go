package resolver

import (
	"strings"

	"stf/internal/domain"
	"stf/internal/tree"
)

// knownBrowsers are the browser families a runner can launch
var knownBrowsers = map[string]bool{
	"chrome":             true,
	"chromium":           true,
	"chrome-for-testing": true,
	"edge":               true,
	"electron":           true,
	"firefox":            true,
	"webkit":             true,
}

// KnownBrowser reports whether name is a launchable browser family
func KnownBrowser(name string) bool {
	return knownBrowsers[normalizeBrowser(name)]
}

func normalizeBrowser(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BrowserEligible reports whether test i may run in browser.
// The nearest node with a non-empty allow-list, starting at i itself, decides.
// An unknown or empty browser name fails open.
func BrowserEligible(t *tree.Tree, i int, browser string) bool {
	if !KnownBrowser(browser) {
		return true
	}
	if list := GoverningList(t, i); len(list) > 0 {
		return allows(list, browser)
	}
	return true
}

// GoverningList returns the allow-list that applies to node i, or nil.
func GoverningList(t *tree.Tree, i int) []string {
	for cur := i; cur != domain.NoParent; cur = t.Parent(cur) {
		if list := t.Browsers(cur); len(list) > 0 {
			return list
		}
	}
	return nil
}

// allows evaluates an allow-list. "!name" entries exclude a browser; when
// positive entries exist the browser must match one of them.
func allows(list []string, browser string) bool {
	browser = normalizeBrowser(browser)
	positives := 0
	matched := false
	for _, entry := range list {
		entry = normalizeBrowser(entry)
		if name, negated := strings.CutPrefix(entry, "!"); negated {
			if name == browser {
				return false
			}
			continue
		}
		positives++
		if entry == browser {
			matched = true
		}
	}
	return positives == 0 || matched
}
