package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all snapshots as JSON",
		Long:  "Export every record under the storage root as a JSON array of {file, snapshots}.",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s := openStore(loadConfig())

	records, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	printJSON(records)
}
