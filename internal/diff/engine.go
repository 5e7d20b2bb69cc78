// Package diff computes structural diffs between stored JSON snapshots.
package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/confsync-project/confsync/pkg/errclass"
	"github.com/confsync-project/confsync/pkg/jsonutil"
)

// SegmentKind classifies one run of diff output.
type SegmentKind string

const (
	SegmentUnchanged SegmentKind = "unchanged"
	SegmentAdded     SegmentKind = "added"
	SegmentRemoved   SegmentKind = "removed"
)

// Segment is one ordered run of the diff: a block of text that is
// unchanged, added or removed. Text retains line terminators.
type Segment struct {
	Text string      `json:"text"`
	Kind SegmentKind `json:"kind"`
}

// Report is the result of diffing two snapshots.
type Report struct {
	FromPath     string    `json:"fromPath"`
	ToPath       string    `json:"toPath"`
	Segments     []Segment `json:"segments"`
	AddedLines   int       `json:"addedLines"`
	RemovedLines int       `json:"removedLines"`
}

// HasChanges reports whether any added or removed segments exist.
// "No differences" is a valid report, distinguishable from a failed render.
func (r *Report) HasChanges() bool {
	return r.AddedLines > 0 || r.RemovedLines > 0
}

// Engine computes diffs between snapshot files.
type Engine struct{}

// NewEngine creates a diff engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Diff loads both snapshot files, normalizes each to the pretty form used
// at write time, and computes a line-oriented structural diff. A missing
// file is a hard failure, unlike listing.
func (e *Engine) Diff(pathA, pathB string) (*Report, error) {
	docA, textA, err := loadNormalized(pathA)
	if err != nil {
		return nil, err
	}
	docB, textB, err := loadNormalized(pathB)
	if err != nil {
		return nil, err
	}

	report := &Report{FromPath: pathA, ToPath: pathB}
	linesA := difflib.SplitLines(textA)

	// Canonically equal documents need no line matching; the whole text
	// is a single unchanged run.
	if canonicalEqual(docA, docB) {
		report.append(SegmentUnchanged, linesA)
		return report, nil
	}

	linesB := difflib.SplitLines(textB)
	matcher := difflib.NewMatcher(linesA, linesB)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			report.append(SegmentUnchanged, linesA[op.I1:op.I2])
		case 'd':
			report.append(SegmentRemoved, linesA[op.I1:op.I2])
		case 'i':
			report.append(SegmentAdded, linesB[op.J1:op.J2])
		case 'r':
			report.append(SegmentRemoved, linesA[op.I1:op.I2])
			report.append(SegmentAdded, linesB[op.J1:op.J2])
		}
	}

	return report, nil
}

func (r *Report) append(kind SegmentKind, lines []string) {
	if len(lines) == 0 {
		return
	}
	text := strings.Join(lines, "")

	// A segment that is purely the document's final newline renders to
	// nothing, so it counts for nothing. Every other line counts, matching
	// RenderWith exactly.
	count := len(lines)
	if text == "\n" {
		count = 0
	}
	switch kind {
	case SegmentAdded:
		r.AddedLines += count
	case SegmentRemoved:
		r.RemovedLines += count
	}
	r.Segments = append(r.Segments, Segment{Text: text, Kind: kind})
}

// canonicalEqual reports whether two decoded documents serialize to the
// same canonical bytes.
func canonicalEqual(a, b any) bool {
	ca, err := jsonutil.CanonicalMarshal(a)
	if err != nil {
		return false
	}
	cb, err := jsonutil.CanonicalMarshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}

// loadNormalized reads a snapshot file and re-serializes its JSON document
// in the 2-space pretty form, returning both the decoded document and the
// text. Line splitting supplies the final newline.
func loadNormalized(path string) (any, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errclass.ErrSnapshotNotFound.WithMessagef("snapshot not found: %s", path)
		}
		return nil, "", fmt.Errorf("read snapshot: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", errclass.ErrSnapshotCorrupt.WithMessagef("parse snapshot %s: %v", path, err)
	}

	pretty, err := jsonutil.PrettyMarshal(doc)
	if err != nil {
		return nil, "", err
	}
	return doc, string(pretty), nil
}

// Annotate is a per-line decorator applied during rendering; the engine
// itself emits no color.
type Annotate func(kind SegmentKind, line string) string

func plain(_ SegmentKind, line string) string { return line }

// Render produces the annotated line list: unchanged lines prefixed with
// two spaces, added with "+ ", removed with "- ". A segment whose value is
// exactly "\n" contributes nothing, so diffs never end in a spurious blank
// added or removed line.
func (r *Report) Render() string {
	return r.RenderWith(plain)
}

// RenderWith renders the report, passing each prefixed line through
// annotate before output.
func (r *Report) RenderWith(annotate Annotate) string {
	var sb strings.Builder
	for _, seg := range r.Segments {
		if seg.Text == "\n" {
			continue
		}

		prefix := "  "
		switch seg.Kind {
		case SegmentAdded:
			prefix = "+ "
		case SegmentRemoved:
			prefix = "- "
		}

		lines := strings.Split(seg.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			sb.WriteString(annotate(seg.Kind, prefix+line))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
