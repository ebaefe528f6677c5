package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restore <file> <id>",
		Short: "Overwrite the file with a snapshot",
		Args:  cobra.ExactArgs(2),
		Run:   runRestore,
	}

	RootCmd.AddCommand(cmd)
}

func runRestore(cmd *cobra.Command, args []string) {
	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("restore", err)
	}

	e, err := sess.Restore(cmd.Context(), args[1])
	if err != nil {
		exitErr("restore", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"file":%q,"id":%q,"line":%d}`+"\n", sess.ActiveKey(), e.ID, e.Position.Line)
}
