package domain

// Annotation is the final inclusion classification of a test
type Annotation int

const (
	// Included tests count toward the summary.
	Included Annotation = iota
	// ExcludedByMarker tests are disabled by only/skip markers and shown as pending.
	ExcludedByMarker
	// SkippedBrowser tests cannot run in the active browser; always shown, never counted.
	SkippedBrowser
	// ExcludedByFilter tests are outside a non-empty filter set and hidden by default.
	ExcludedByFilter
)

// SkippedBrowserLabel is appended to titles of browser-ineligible nodes
const SkippedBrowserLabel = "(skipped due to browser)"

// String returns a short name for logs and JSON reports
func (a Annotation) String() string {
	switch a {
	case Included:
		return "included"
	case ExcludedByMarker:
		return "excluded-by-marker"
	case SkippedBrowser:
		return "skipped-browser"
	case ExcludedByFilter:
		return "excluded-by-filter"
	default:
		return "unknown"
	}
}

// Counted reports whether the annotation contributes to summary counters
func (a Annotation) Counted() bool {
	return a == Included
}

// HiddenByDefault reports whether the default reporter view hides the test
func (a Annotation) HiddenByDefault() bool {
	return a == ExcludedByFilter
}
