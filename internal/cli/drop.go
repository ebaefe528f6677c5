package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/session"
	"github.com/rcliao/file-snapshot/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "drop <file>",
		Short: "Delete all snapshots of a file",
		Args:  cobra.ExactArgs(1),
		Run:   runDrop,
	}

	RootCmd.AddCommand(cmd)
}

func runDrop(cmd *cobra.Command, args []string) {
	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	// a malformed record can still be dropped
	if err != nil && !errors.Is(err, store.ErrMalformedRecord) {
		exitErr("drop", err)
	}

	err = sess.DeleteAll(cmd.Context())
	if errors.Is(err, session.ErrCanceled) {
		fmt.Fprintln(cmd.OutOrStdout(), `{"ok":false,"canceled":true}`)
		return
	}
	if err != nil {
		exitErr("drop", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"file":%q}`+"\n", sess.ActiveKey())
}
