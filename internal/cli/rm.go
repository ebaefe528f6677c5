package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <file> <id>...",
		Short: "Delete snapshots",
		Long:  "Delete one or more snapshots of a file. Deleting the last one removes the record.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("rm", err)
	}

	for _, id := range args[1:] {
		if err := sess.Delete(cmd.Context(), id); err != nil {
			exitErr("rm", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"file":%q,"remaining":%d}`+"\n", sess.ActiveKey(), sess.Working().Len())
}
