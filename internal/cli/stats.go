package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s := openStore(loadConfig())

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if textFormat() {
		fmt.Printf("storage:   %s\n", stats.StorageDir)
		fmt.Printf("records:   %d (%d malformed)\n", stats.Records, stats.Malformed)
		fmt.Printf("snapshots: %d\n", stats.Snapshots)
		fmt.Printf("size:      %s\n", humanize.Bytes(uint64(stats.SizeBytes)))
		for _, f := range stats.Files {
			fmt.Printf("  %-40s %3d  %s\n", f.File, f.Snapshots, humanize.Bytes(uint64(f.SizeBytes)))
		}
		return
	}
	printJSON(stats)
}
