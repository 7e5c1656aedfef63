package domain

import "fmt"

// Summary holds the reporter counters for one annotated tree.
// Pass, Fail and Pending only count Included tests.
type Summary struct {
	Pass     int `json:"pass_count"`
	Fail     int `json:"fail_count"`
	Pending  int `json:"pending_count"`
	Included int `json:"included"`
	Total    int `json:"total"`

	ExcludedByMarker int `json:"excluded_by_marker"`
	SkippedBrowser   int `json:"skipped_browser"`
	ExcludedByFilter int `json:"excluded_by_filter"`
}

// Badge renders the "N / M tests" summary shown on the dismiss control
func (s Summary) Badge() string {
	return fmt.Sprintf("%d / %d tests", s.Included, s.Total)
}
