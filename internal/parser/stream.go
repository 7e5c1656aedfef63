package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"stf/internal/domain"
)

// Event names recognized in an outcome stream
const (
	EventTestAfterRun     = "test:after:run"
	EventPageReinitialize = "page:reinitialized"
)

// ErrInvalidStream is wrapped by every malformed line error
var ErrInvalidStream = errors.New("invalid outcome stream")

// maxLineSize bounds a single NDJSON line
const maxLineSize = 1024 * 1024

// StreamParser parses newline-delimited JSON events. Lines whose event is
// not one of the recognized names are skipped.
type StreamParser struct{}

// NewStreamParser creates a new StreamParser
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// ParseFile parses the stream stored at path
func (p *StreamParser) ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening results %s: %w", path, err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads r until EOF
func (p *StreamParser) Parse(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		rec, ok, err := p.parseLine(raw, line)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read outcome stream: %w", err)
	}
	return records, nil
}

func (p *StreamParser) parseLine(raw string, line int) (Record, bool, error) {
	if !gjson.Valid(raw) {
		return Record{}, false, fmt.Errorf("%w: line %d is not JSON", ErrInvalidStream, line)
	}

	switch gjson.Get(raw, "event").String() {
	case EventPageReinitialize:
		return Record{Kind: RecordReinit, Line: line}, true, nil
	case EventTestAfterRun:
		id, err := titleID(gjson.Get(raw, "title"))
		if err != nil {
			return Record{}, false, fmt.Errorf("%w: line %d: %v", ErrInvalidStream, line, err)
		}
		return Record{
			Kind:    RecordOutcome,
			Line:    line,
			ID:      id,
			Outcome: domain.ParseOutcome(gjson.Get(raw, "state").String()),
		}, true, nil
	default:
		return Record{}, false, nil
	}
}

// titleID joins the title path of a test into its id. A plain string title
// is taken as the id itself.
func titleID(title gjson.Result) (string, error) {
	if title.Type == gjson.String {
		if title.String() == "" {
			return "", errors.New("empty title")
		}
		return title.String(), nil
	}
	if !title.IsArray() {
		return "", errors.New("missing title")
	}

	var parts []string
	for _, v := range title.Array() {
		if v.Type != gjson.String || v.String() == "" {
			return "", fmt.Errorf("bad title segment %s", v.Raw)
		}
		parts = append(parts, v.String())
	}
	if len(parts) == 0 {
		return "", errors.New("empty title")
	}
	return domain.JoinID(parts...), nil
}

var _ Parser = (*StreamParser)(nil)
