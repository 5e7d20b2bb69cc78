package diff_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confsync-project/confsync/internal/diff"
	"github.com/confsync-project/confsync/pkg/errclass"
)

func writeDoc(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiff_Identical(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `[{"id":"a"}]`)
	b := writeDoc(t, `[{"id":"a"}]`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)
	assert.False(t, report.HasChanges())
	assert.Equal(t, 0, report.AddedLines)
	assert.Equal(t, 0, report.RemovedLines)
}

func TestDiff_FormattingOnly(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{"id":"a","name":"x"}`)
	b := writeDoc(t, "{\n  \"name\": \"x\",   \"id\": \"a\"\n}")

	report, err := engine.Diff(a, b)
	require.NoError(t, err)
	assert.False(t, report.HasChanges())

	// Equivalent documents produce only unchanged segments, never an
	// empty report.
	require.NotEmpty(t, report.Segments)
	for _, seg := range report.Segments {
		assert.Equal(t, diff.SegmentUnchanged, seg.Kind)
	}
}

func TestDiff_AddedElement(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `[{"id":"a"}]`)
	b := writeDoc(t, `[{"id":"a"},{"id":"b"}]`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)
	assert.True(t, report.HasChanges())
	assert.Greater(t, report.AddedLines, 0)

	rendered := report.Render()
	assert.Contains(t, rendered, `+     "id": "b"`)
	assert.NotContains(t, rendered, `- `)
}

func TestDiff_ChangedField(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{"id":"a","enabled":true}`)
	b := writeDoc(t, `{"id":"a","enabled":false}`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, report.AddedLines)
	assert.Equal(t, 1, report.RemovedLines)

	rendered := report.Render()
	assert.Contains(t, rendered, `- `)
	assert.Contains(t, rendered, `+ `)
	assert.Contains(t, rendered, `"enabled": true`)
	assert.Contains(t, rendered, `"enabled": false`)
}

func TestDiff_RenderPrefixes(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{"id":"a","keep":1,"old":2}`)
	b := writeDoc(t, `{"id":"a","keep":1,"new":3}`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimRight(report.Render(), "\n"), "\n") {
		ok := strings.HasPrefix(line, "  ") ||
			strings.HasPrefix(line, "+ ") ||
			strings.HasPrefix(line, "- ")
		assert.True(t, ok, "unexpected line prefix: %q", line)
	}
}

func TestDiff_NoTrailingBlankLine(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `[{"id":"a"}]`)
	b := writeDoc(t, `[{"id":"a"},{"id":"b"}]`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)

	rendered := report.Render()
	assert.False(t, strings.HasSuffix(rendered, "\n\n"))
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		assert.NotEqual(t, "+ ", strings.TrimRight(line, " "))
		assert.NotEqual(t, "- ", strings.TrimRight(line, " "))
	}
}

func TestDiff_MissingFile(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{}`)

	_, err := engine.Diff(a, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, errclass.ErrSnapshotNotFound)

	_, err = engine.Diff(filepath.Join(t.TempDir(), "missing.json"), a)
	assert.ErrorIs(t, err, errclass.ErrSnapshotNotFound)
}

func TestDiff_CorruptFile(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{}`)
	bad := writeDoc(t, `{broken`)

	_, err := engine.Diff(a, bad)
	assert.ErrorIs(t, err, errclass.ErrSnapshotCorrupt)
}

func TestDiff_CountsMatchRendering(t *testing.T) {
	engine := diff.NewEngine()

	cases := []struct{ a, b string }{
		{`[{"id":"a"}]`, `[{"id":"a"},{"id":"b"}]`},
		{`{"id":"a","enabled":true}`, `{"id":"a","enabled":false}`},
		{`{"v":"a\nb"}`, `{"v":"a\nc","w":1}`},
		{`[]`, `[{"id":"a"}]`},
	}
	for _, tc := range cases {
		report, err := engine.Diff(writeDoc(t, tc.a), writeDoc(t, tc.b))
		require.NoError(t, err)

		added, removed := 0, 0
		for _, line := range strings.Split(strings.TrimRight(report.Render(), "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+ "):
				added++
			case strings.HasPrefix(line, "- "):
				removed++
			}
		}
		assert.Equal(t, report.AddedLines, added, "%s -> %s", tc.a, tc.b)
		assert.Equal(t, report.RemovedLines, removed, "%s -> %s", tc.a, tc.b)
	}
}

func TestReport_WireFormat(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{"v":1}`)
	b := writeDoc(t, `{"v":2}`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"fromPath"`)
	assert.Contains(t, string(out), `"toPath"`)
	assert.Contains(t, string(out), `"addedLines"`)
	assert.Contains(t, string(out), `"removedLines"`)
	assert.NotContains(t, string(out), `"added_lines"`)
}

func TestRenderWith_Annotate(t *testing.T) {
	engine := diff.NewEngine()
	a := writeDoc(t, `{"v":1}`)
	b := writeDoc(t, `{"v":2}`)

	report, err := engine.Diff(a, b)
	require.NoError(t, err)

	rendered := report.RenderWith(func(kind diff.SegmentKind, line string) string {
		switch kind {
		case diff.SegmentAdded:
			return "A|" + line
		case diff.SegmentRemoved:
			return "R|" + line
		default:
			return line
		}
	})
	assert.Contains(t, rendered, "A|+ ")
	assert.Contains(t, rendered, "R|- ")
}
