package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configuration and the effective storage directory",
		Args:  cobra.NoArgs,
		Run:   runConfigShow,
	}

	setCmd := &cobra.Command{
		Use:   "set <path|tree-location> <value>",
		Short: "Change a setting",
		Long: "Change a setting. Changing path moves the existing .snapshot directory to the new " +
			"location; the config file is only updated when the move succeeds.",
		Args: cobra.ExactArgs(2),
		Run:  runConfigSet,
	}

	configCmd.AddCommand(showCmd, setCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	root, warn := cfg.Root()
	s := openStore(cfg)

	out := map[string]interface{}{
		"config_file":   getConfigPath(),
		"path":          cfg.Path,
		"tree_location": cfg.TreeLocation,
		"root_kind":     root.Kind.String(),
		"storage_dir":   s.StorageDir(),
	}
	if warn != nil {
		out["warning"] = warn.Error()
	}
	printJSON(out)
}

func runConfigSet(cmd *cobra.Command, args []string) {
	key, value := args[0], args[1]

	next := *loadConfig()
	switch key {
	case "path":
		next.Path = value
	case "tree-location", "tree_location":
		loc := config.TreeLocation(value)
		if !loc.Valid() {
			exitErr("config set", fmt.Errorf("unknown tree location %q (use %s or %s)", value, config.TreeExplorer, config.TreeSnapshot))
		}
		next.TreeLocation = loc
	default:
		exitErr("config set", fmt.Errorf("unknown setting %q", key))
	}

	if err := next.Validate(); err != nil {
		exitErr("config set", err)
	}

	h := newTerminalHost("", os.Stdin, cmd.ErrOrStderr())
	sess, _, err := openSession(cmd, h)
	if err != nil {
		exitErr("open", err)
	}
	r, err := sess.Reconfigure(cmd.Context(), &next)
	if err != nil {
		exitErr("relocate", err)
	}
	if err := config.Save(getConfigPath(), &next); err != nil {
		exitErr("save config", err)
	}

	printJSON(map[string]interface{}{
		"ok":            true,
		"tree_location": sess.TreeLocation(),
		"relocation":    r,
	})
}
