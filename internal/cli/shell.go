package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/config"
	"github.com/rcliao/file-snapshot/internal/model"
	"github.com/rcliao/file-snapshot/internal/session"
)

const shellHelp = `commands:
  open <file>                 make <file> the active file
  close                       clear the active file
  cursor <line> [column]      set the cursor recorded by save
  save [label]                snapshot the active file (prompts when no label)
  ls                          list snapshots of the active file
  restore <id>                overwrite the active file with a snapshot
  rm <id>                     delete a snapshot
  drop                        delete all snapshots of the active file
  clear                       delete every snapshot in the workspace
  sync                        reload the active file's snapshots from disk
  config <path|tree-location> <value>
  metrics                     show session counters
  quit`

func init() {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive session that keeps snapshots cached across file switches",
		Args:  cobra.NoArgs,
		Run:   runShell,
	}

	RootCmd.AddCommand(cmd)
}

func runShell(cmd *cobra.Command, args []string) {
	h := newTerminalHost("", os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("open", err)
	}
	sh := &shell{
		sess:   sess,
		host:   h,
		cfg:    loadConfig(),
		out:    cmd.OutOrStdout(),
		prompt: "snapshot> ",
		saveConfig: func(cfg *config.Config) error {
			return config.Save(getConfigPath(), cfg)
		},
	}
	if err := sh.run(cmd.Context()); err != nil {
		exitErr("shell", err)
	}
}

// shell reads commands from the host's input and drives a session.
type shell struct {
	sess       *session.Session
	host       *terminalHost
	cfg        *config.Config
	out        io.Writer
	prompt     string
	saveConfig func(*config.Config) error
}

func (sh *shell) run(ctx context.Context) error {
	for {
		fmt.Fprint(sh.out, sh.prompt)
		line, ok := sh.host.readLine()
		if !ok {
			fmt.Fprintln(sh.out)
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := sh.exec(ctx, fields[0], fields[1:]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(ctx context.Context, name string, args []string) error {
	switch name {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <file>")
		}
		sh.host.setFile(args[0])
		if err := sh.sess.SwitchFile(ctx); err != nil {
			return err
		}
		sh.list()
	case "close":
		sh.host.setFile("")
		return sh.sess.SwitchFile(ctx)
	case "cursor":
		return sh.cursor(args)
	case "save":
		if len(args) > 0 {
			sh.host.setLabel(strings.Join(args, " "))
		}
		defer func() { sh.host.hasLabel = false }()
		e, err := sh.sess.Save(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "saved %s %s\n", e.ID, e.Desc)
	case "ls":
		sh.list()
	case "restore":
		if len(args) != 1 {
			return errors.New("usage: restore <id>")
		}
		e, err := sh.sess.Restore(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "restored %s, cursor at line %d\n", e.ID, e.Position.Line)
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <id>")
		}
		if err := sh.sess.Delete(ctx, args[0]); err != nil {
			return err
		}
		sh.list()
	case "drop":
		if err := sh.sess.DeleteAll(ctx); err != nil {
			return err
		}
		sh.list()
	case "clear":
		return sh.sess.ClearAll(ctx)
	case "sync":
		if err := sh.sess.Sync(ctx); err != nil {
			return err
		}
		sh.list()
	case "config":
		return sh.config(ctx, args)
	case "metrics":
		m := sh.sess.Metrics()
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(sh.out, "%-24s %d\n", name, m[name])
		}
	default:
		return errors.Errorf("unknown command %q (try help)", name)
	}
	return nil
}

func (sh *shell) cursor(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: cursor <line> [column]")
	}
	var pos model.Position
	var err error
	if pos.Line, err = strconv.Atoi(args[0]); err != nil {
		return errors.Wrap(err, "line")
	}
	if len(args) == 2 {
		if pos.Column, err = strconv.Atoi(args[1]); err != nil {
			return errors.Wrap(err, "column")
		}
	}
	sh.host.cursor = pos
	return nil
}

func (sh *shell) config(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: config <path|tree-location> <value>")
	}
	next := *sh.cfg
	switch args[0] {
	case "path":
		next.Path = args[1]
	case "tree-location":
		loc := config.TreeLocation(args[1])
		if !loc.Valid() {
			return errors.Errorf("unknown tree location %q", args[1])
		}
		next.TreeLocation = loc
	default:
		return errors.Errorf("unknown setting %q", args[0])
	}

	if err := next.Validate(); err != nil {
		return err
	}
	r, err := sh.sess.Reconfigure(ctx, &next)
	if err != nil {
		return err
	}
	sh.cfg = &next
	if sh.saveConfig != nil {
		if err := sh.saveConfig(&next); err != nil {
			return err
		}
	}
	fmt.Fprintf(sh.out, "storage: %s (tree location: %s)\n", r.To, sh.sess.TreeLocation())
	return nil
}

func (sh *shell) list() {
	if key := sh.sess.ActiveKey(); key != "" {
		fmt.Fprintf(sh.out, "%s:\n", key)
	}
	for _, item := range sh.sess.Items() {
		if item.Placeholder {
			fmt.Fprintf(sh.out, "  %s\n", item.Label)
			continue
		}
		fmt.Fprintf(sh.out, "  %s  %s\n", item.ID, item.Label)
	}
}
