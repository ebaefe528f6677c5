package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync <file>",
		Short: "Reload a file's snapshots from disk",
		Args:  cobra.ExactArgs(1),
		Run:   runSync,
	}

	RootCmd.AddCommand(cmd)
}

func runSync(cmd *cobra.Command, args []string) {
	h := newTerminalHost(args[0], os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil && !errors.Is(err, store.ErrMalformedRecord) {
		exitErr("sync", err)
	}

	if err := sess.Sync(cmd.Context()); err != nil {
		exitErr("sync", err)
	}
	printJSON(map[string]interface{}{
		"file":  sess.ActiveKey(),
		"items": sess.Items(),
	})
}
