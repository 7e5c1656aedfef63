package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"stf/internal/domain"
)

// filterFile is the on-disk layout of the JSON filter store
type filterFile struct {
	Runs map[string][]string `json:"runs"`
}

// JSONBackend stores filter sets in a single JSON file. Every Load rereads
// the file so sets written by another process are picked up.
type JSONBackend struct {
	mu   sync.Mutex
	path string
}

// NewJSONBackend returns a Backend reading and writing path.
func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path}
}

// Path returns the file backing the store
func (b *JSONBackend) Path() string {
	return b.path
}

func (b *JSONBackend) read() (filterFile, error) {
	out := filterFile{Runs: map[string][]string{}}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("read filter store: %w", err)
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse filter store: %w", err)
	}
	if out.Runs == nil {
		out.Runs = map[string][]string{}
	}
	return out, nil
}

func (b *JSONBackend) write(f filterFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal filter store: %w", err)
	}
	if err := writeFileAtomic(b.path, data); err != nil {
		return fmt.Errorf("write filter store: %w", err)
	}
	return nil
}

// Load implements Backend
func (b *JSONBackend) Load(_ context.Context, runID string) ([]string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.read()
	if err != nil {
		return nil, false, err
	}
	ids, ok := f.Runs[runID]
	return ids, ok, nil
}

// Save implements Backend
func (b *JSONBackend) Save(_ context.Context, runID string, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.read()
	if err != nil {
		return err
	}
	f.Runs[runID] = append([]string{}, ids...)
	return b.write(f)
}

// Delete implements Backend
func (b *JSONBackend) Delete(_ context.Context, runID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := f.Runs[runID]; !ok {
		return nil
	}
	delete(f.Runs, runID)
	return b.write(f)
}

// RunIDs implements Backend
func (b *JSONBackend) RunIDs(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.read()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(f.Runs))
	for id := range f.Runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements Backend
func (b *JSONBackend) Close() error {
	return nil
}

// JSONReports writes reports to a JSON file under the configured output path
type JSONReports struct {
	path string
}

// NewJSONReports returns a ReportWriter for path
func NewJSONReports(path string) *JSONReports {
	return &JSONReports{path: path}
}

// SaveReports writes every report to the output file.
func (r *JSONReports) SaveReports(reports []domain.Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}

// LoadReports reads the reports written by the last report run.
func (r *JSONReports) LoadReports() ([]domain.Report, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read reports file: %w", err)
	}
	var reports []domain.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("parse reports: %w", err)
	}
	return reports, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var (
	_ Backend      = (*JSONBackend)(nil)
	_ ReportWriter = (*JSONReports)(nil)
)
