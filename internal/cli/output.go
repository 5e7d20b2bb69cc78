package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/confsync-project/confsync/internal/diff"
	"github.com/confsync-project/confsync/pkg/color"
	"github.com/confsync-project/confsync/pkg/jsonutil"
)

func decodeJSON(data []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func printJSON(doc any) {
	out, err := jsonutil.PrettyMarshal(doc)
	if err != nil {
		fmtErr("serialize: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// colorize decorates rendered diff lines when color output is enabled.
func colorize(kind diff.SegmentKind, line string) string {
	switch kind {
	case diff.SegmentAdded:
		return color.Added(line)
	case diff.SegmentRemoved:
		return color.Removed(line)
	default:
		return line
	}
}

func printReport(report *diff.Report) {
	if !report.HasChanges() {
		fmt.Println("No differences.")
		return
	}
	fmt.Print(report.RenderWith(colorize))
	fmt.Printf("\n%s\n", color.Dim(fmt.Sprintf("%d added, %d removed",
		report.AddedLines, report.RemovedLines)))
}
