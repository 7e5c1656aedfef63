package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSpecPath is where spec fixtures are discovered
	DefaultSpecPath = "specs"
	// DefaultResultsPath holds one outcome stream per spec
	DefaultResultsPath = "results"
	// DefaultStorageDir is the directory for the filter store and reports
	DefaultStorageDir = "storage"
	// DefaultStoreFile is the JSON filter store file name
	DefaultStoreFile = "filters.json"
	// DefaultOutputJSONFile is the default report file name
	DefaultOutputJSONFile = "stf-report.json"
	// DefaultStoreDriver is the filter store backend
	DefaultStoreDriver = "json"
	// DefaultBrowser is the browser assumed when none is configured
	DefaultBrowser = "electron"
	// DefaultPolicy is how markers and the filter set compose
	DefaultPolicy = "intersect"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultDBHost is the MySQL host used by migrate
	DefaultDBHost = "127.0.0.1"
	// DefaultDBPort is the MySQL port used by migrate
	DefaultDBPort = "3306"
	// DefaultDBUsername is the MySQL user used by migrate
	DefaultDBUsername = "root"
	// DefaultDBDatabase is the database holding filter sets
	DefaultDBDatabase = "stf"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for specs
var DefaultPathsToIgnore = []string{
	"node_modules",
	"vendor",
	"storage",
	"results",
	"dist",
}
