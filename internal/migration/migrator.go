package migration

import "context"

// Migrator prepares the SQL filter store
type Migrator interface {
	Run(ctx context.Context, opts Options) error
}

// Options tune a migration run
type Options struct {
	// ImportJSON copies the sets of the JSON filter store into the SQL store.
	ImportJSON bool
	// Fresh deletes every stored set before importing.
	Fresh bool
}

// Result describes the outcome of a migration run
type Result struct {
	Driver   string
	Imported int
	Removed  int
}
