package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SpecSuffixes are the file suffixes recognized as spec fixtures
var SpecSuffixes = []string{".spec.yaml", ".spec.yml"}

// Scanner scans for spec fixture files in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// IsSpecFile reports whether name carries a spec fixture suffix
func IsSpecFile(name string) bool {
	for _, suffix := range SpecSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Scan finds all spec fixtures under root. A root that is itself a spec
// file is returned as the only result.
func (s *Scanner) Scan(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("spec path does not exist: %s", root)
	}
	if !info.IsDir() {
		if IsSpecFile(root) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("spec path is neither a directory nor a spec file: %s", root)
	}

	var specs []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSpecFile(d.Name()) {
			specs = append(specs, path)
		}
		return nil
	})

	return specs, err
}
