package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <file> <id>",
		Short: "Print a snapshot",
		Long:  "Print a snapshot. JSON format prints the whole entry; text format prints only the saved content.",
		Args:  cobra.ExactArgs(2),
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("show", err)
	}

	e, ok := sess.Working().Get(args[1])
	if !ok {
		exitErr("show", errors.Wrapf(session.ErrSnapshotNotFound, "%s", args[1]))
	}
	if textFormat() {
		fmt.Print(e.Value)
		return
	}
	printJSON(e)
}
