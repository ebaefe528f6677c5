package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List a file's snapshots, oldest first",
		Args:  cobra.ExactArgs(1),
		Run:   runList,
	}

	cmd.Flags().Bool("ids-only", false, "Only output snapshot ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, id := range sess.Working().IDs() {
			fmt.Println(id)
		}
		return
	}

	if textFormat() {
		w := sess.Working()
		if w.Len() == 0 {
			fmt.Println("None")
			return
		}
		for _, item := range sess.Items() {
			e, _ := w.Get(item.ID)
			fmt.Printf("%s  %s  (%s)\n", item.ID, item.Label, humanize.Time(e.Time()))
		}
		return
	}

	printJSON(map[string]interface{}{
		"file":          sess.ActiveKey(),
		"tree_location": sess.TreeLocation(),
		"items":         sess.Items(),
	})
}
