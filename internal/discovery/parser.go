// Package discovery finds spec fixture files and turns them into trees.
package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"stf/internal/domain"
	"stf/internal/tree"
)

// ErrInvalidFixture is wrapped by every fixture validation failure
var ErrInvalidFixture = errors.New("invalid spec fixture")

// specFile is the YAML layout of a spec fixture
type specFile struct {
	Title    string     `yaml:"title"`
	Browsers []string   `yaml:"browsers"`
	Tests    []specNode `yaml:"tests"`
}

type specNode struct {
	Suite    string     `yaml:"suite"`
	Test     string     `yaml:"test"`
	Marker   string     `yaml:"marker"`
	Browsers []string   `yaml:"browsers"`
	Children []specNode `yaml:"children"`
}

// Parser parses spec fixtures into trees
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses the fixture at path. The spec title defaults
// to the file name without its fixture suffix.
func (p *Parser) ParseFile(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading spec %s: %w", path, err)
	}
	t, err := p.Parse(data, SpecName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// SpecName strips the directory and fixture suffix from path
func SpecName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range SpecSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// Parse builds a tree from fixture YAML. defaultTitle is used when the
// fixture has no title of its own.
func (p *Parser) Parse(data []byte, defaultTitle string) (*tree.Tree, error) {
	var spec specFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	title := spec.Title
	if title == "" {
		title = defaultTitle
	}
	b := tree.NewBuilder(title)
	if len(spec.Browsers) > 0 {
		b.Configure(tree.WithBrowsers(spec.Browsers...))
	}
	for k, n := range spec.Tests {
		if err := addNode(b, tree.Root, n, fmt.Sprintf("tests[%d]", k)); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func addNode(b *tree.Builder, parent int, n specNode, at string) error {
	marker, ok := domain.ParseMarker(n.Marker)
	if !ok {
		return fmt.Errorf("%w: %s: unknown marker %q", ErrInvalidFixture, at, n.Marker)
	}
	opts := []tree.Option{tree.WithMarker(marker)}
	if len(n.Browsers) > 0 {
		opts = append(opts, tree.WithBrowsers(n.Browsers...))
	}

	switch {
	case n.Suite != "" && n.Test != "":
		return fmt.Errorf("%w: %s: node is both suite %q and test %q", ErrInvalidFixture, at, n.Suite, n.Test)
	case n.Test != "":
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: %s: test %q has children", ErrInvalidFixture, at, n.Test)
		}
		b.Test(parent, n.Test, opts...)
		return nil
	case n.Suite != "":
		idx := b.Suite(parent, n.Suite, opts...)
		for k, c := range n.Children {
			if err := addNode(b, idx, c, fmt.Sprintf("%s.children[%d]", at, k)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s: node needs a suite or test title", ErrInvalidFixture, at)
	}
}
