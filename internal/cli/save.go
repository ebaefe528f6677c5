package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Save the file's current content as a new snapshot",
		Long:  "Save the file's current content as a new snapshot. The label comes from -m or is prompted for.",
		Args:  cobra.ExactArgs(1),
		Run:   runSave,
	}

	cmd.Flags().StringP("message", "m", "", "Snapshot label")
	cmd.Flags().Int("line", 0, "Cursor line to record")
	cmd.Flags().Int("column", 0, "Cursor column to record")

	RootCmd.AddCommand(cmd)
}

func runSave(cmd *cobra.Command, args []string) {
	line, _ := cmd.Flags().GetInt("line")
	column, _ := cmd.Flags().GetInt("column")

	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	h.cursor = model.Position{Line: line, Column: column}
	if cmd.Flags().Changed("message") {
		label, _ := cmd.Flags().GetString("message")
		h.setLabel(label)
	}

	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("open", err)
	}
	e, err := sess.Save(cmd.Context())
	if err != nil {
		exitErr("save", err)
	}

	if textFormat() {
		fmt.Printf("%s %s\n", e.ID, e.Desc)
		return
	}
	printJSON(map[string]interface{}{
		"ok":       true,
		"file":     sess.ActiveKey(),
		"id":       e.ID,
		"desc":     e.Desc,
		"position": e.Position,
	})
}
