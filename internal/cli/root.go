// Package cli implements the snapshot CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/config"
	"github.com/rcliao/file-snapshot/internal/session"
	"github.com/rcliao/file-snapshot/internal/store"
)

var (
	workspaceDir string
	configPath   string
	formatFlag   string
	verbose      bool
	assumeYes    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Per-file snapshots outside version control",
	Long: "Save named snapshots of a file's content and cursor position into JSON side-car records " +
		"under <workspace>/<path>/.snapshot, restore them, and manage the storage root.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(cmd.ErrOrStderr())
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
		log.SetLevel(log.InfoLevel)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "Workspace root (default: $SNAPSHOT_WORKSPACE or current directory)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/"+config.FileName+")")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	RootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmations")
}

func getWorkspaceDir() string {
	if workspaceDir != "" {
		return workspaceDir
	}
	if env := os.Getenv("SNAPSHOT_WORKSPACE"); env != "" {
		return env
	}
	cwd, _ := os.Getwd()
	return cwd
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(getWorkspaceDir(), config.FileName)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

// openStore builds the file store for the current workspace and config.
func openStore(cfg *config.Config) *store.FileStore {
	ws, err := store.NewWorkspace("", getWorkspaceDir())
	if err != nil {
		exitErr("workspace", err)
	}
	root, err := cfg.Root()
	if errors.Is(err, config.ErrInvalidConfiguredPath) {
		log.Warn(err)
	}
	return store.NewFileStore(store.NewMapper(ws, root))
}

// openSession opens a session on the host's active file. The session is usable even when
// the error is non-nil, so commands that can recover from a malformed record may go on.
func openSession(cmd *cobra.Command, h *terminalHost) (*session.Session, *store.FileStore, error) {
	cfg := loadConfig()
	s := openStore(cfg)
	sess := session.New(h, s, session.WithTreeLocation(cfg.TreeLocation))
	return sess, s, sess.SwitchFile(cmd.Context())
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func textFormat() bool {
	return formatFlag == "text"
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
