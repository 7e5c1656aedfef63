package domain

// ReportMeta describes one reported spec
type ReportMeta struct {
	Spec      string   `json:"spec"`
	RunID     string   `json:"run_id,omitempty"`
	Browser   string   `json:"browser"`
	Policy    string   `json:"policy"`
	Filter    []string `json:"filter,omitempty"`
	Summary   Summary  `json:"summary"`
	Badge     string   `json:"badge"`
	Timestamp string   `json:"timestamp"`
}

// ReportEntry is one test line of a report
type ReportEntry struct {
	ID         string `json:"id"`
	Annotation string `json:"annotation"`
	Outcome    string `json:"outcome"`
	Counted    bool   `json:"counted"`
}

// Report is the persisted reporter view of a single spec
type Report struct {
	Meta  ReportMeta    `json:"meta"`
	Tests []ReportEntry `json:"tests"`
}
