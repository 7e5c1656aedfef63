package cli

import "stf/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	Processors  int
	SpecPath    string
	ResultsPath string
	NameFilter  string
	Browser     string
	RunID       string
	Policy      string
	StoreDriver string
	StoreDSN    string
	ShowHidden  bool
	ShowTests   bool
	Tree        bool
	FromPayload string
	ImportJSON  bool
	Fresh       bool
	Verbose     bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		Processors:  f.Processors,
		SpecPath:    f.SpecPath,
		ResultsPath: f.ResultsPath,
		NameFilter:  f.NameFilter,
		Browser:     f.Browser,
		RunID:       f.RunID,
		Policy:      f.Policy,
		StoreDriver: f.StoreDriver,
		StoreDSN:    f.StoreDSN,
		ShowHidden:  f.ShowHidden,
		ShowTests:   f.ShowTests,
		Tree:        f.Tree,
		FromPayload: f.FromPayload,
		ImportJSON:  f.ImportJSON,
		Fresh:       f.Fresh,
		Verbose:     f.Verbose,
	}
}
