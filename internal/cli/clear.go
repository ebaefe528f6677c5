package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every snapshot in the workspace",
		Args:  cobra.NoArgs,
		Run:   runClear,
	}

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	h := newTerminalHost("", os.Stdin, cmd.ErrOrStderr())
	sess, s, err := openSession(cmd, h)
	if err != nil {
		exitErr("clear", err)
	}

	err = sess.ClearAll(cmd.Context())
	if errors.Is(err, session.ErrCanceled) {
		fmt.Fprintln(cmd.OutOrStdout(), `{"ok":false,"canceled":true}`)
		return
	}
	if err != nil {
		exitErr("clear", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"removed":%q}`+"\n", s.StorageDir())
}
