package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confsync-project/confsync/pkg/color"
	"github.com/confsync-project/confsync/pkg/confsync"
	"github.com/confsync-project/confsync/pkg/model"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage configuration snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list [itemType]",
	Short: "List snapshots for an item type, or all item types",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		if len(args) == 0 {
			types, err := client.ItemTypes()
			if err != nil {
				fmtErr("list item types: %v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(types)
				return
			}
			if len(types) == 0 {
				fmt.Println("No snapshots yet.")
				return
			}
			for _, t := range types {
				fmt.Println(t)
			}
			return
		}

		infos, err := client.ListSnapshots(args[0])
		if err != nil {
			fmtErr("list snapshots: %v", err)
			os.Exit(1)
		}
		if jsonOutput {
			outputJSON(infos)
			return
		}
		if len(infos) == 0 {
			fmt.Println("No snapshots found.")
			return
		}
		for _, info := range infos {
			label := ""
			if model.IsImportFile(info.ID) {
				label = "  " + color.Dim("(import)")
			}
			fmt.Printf("%s%s\n", color.SnapshotID(info.ID), label)
		}
	},
}

var snapshotStoreCmd = &cobra.Command{
	Use:   "store <itemType> [file]",
	Short: "Store a JSON document as a timestamped snapshot",
	Long: `Store a JSON document as a timestamped snapshot.

Reads from the given file, or from stdin when the file is "-" or omitted.

Examples:
  confsync snapshot store roles roles.json
  some-tool export roles | confsync snapshot store roles`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		var data []byte
		var err error
		if len(args) < 2 || args[1] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			fmtErr("read input: %v", err)
			os.Exit(1)
		}

		doc, err := decodeJSON(data)
		if err != nil {
			fmtErr("parse input: %v", err)
			os.Exit(1)
		}

		path, err := client.StoreSnapshot(args[0], doc)
		if err != nil {
			fmtErr("store snapshot: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(map[string]string{"path": path})
			return
		}
		fmt.Printf("Stored %s\n", path)
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <itemType> [id]",
	Short: "Print one snapshot",
	Long: `Print one snapshot as pretty JSON.

With no id, shows the most recent snapshot for the item type. The id may
be a full filename or a unique prefix.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		client := requireClient()

		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		path, err := resolveSnapshot(client, args[0], id)
		if err != nil {
			fmtErr("%v", err)
			os.Exit(1)
		}

		doc, err := client.LoadSnapshot(path)
		if err != nil {
			fmtErr("load snapshot: %v", err)
			os.Exit(1)
		}
		printJSON(doc)
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotStoreCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// resolveSnapshot maps an id or unique id prefix to a snapshot path. An
// empty id resolves to the most recent snapshot.
func resolveSnapshot(client *confsync.Client, itemType, id string) (string, error) {
	infos, err := client.ListSnapshots(itemType)
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no snapshots for %s", itemType)
	}

	if id == "" {
		return infos[len(infos)-1].Path, nil
	}

	var matches []model.SnapshotInfo
	for _, info := range infos {
		if info.ID == id {
			return info.Path, nil
		}
		if strings.HasPrefix(info.ID, id) {
			matches = append(matches, info)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no snapshot matching %q for %s", id, itemType)
	case 1:
		return matches[0].Path, nil
	default:
		return "", fmt.Errorf("ambiguous snapshot id %q (%d matches)", id, len(matches))
	}
}
