package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/file-snapshot/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search snapshot labels across the workspace",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().BoolP("content", "c", false, "Also search the saved content")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	content, _ := cmd.Flags().GetBool("content")
	limit, _ := cmd.Flags().GetInt("limit")

	s := openStore(loadConfig())
	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query:   strings.Join(args, " "),
		Content: content,
		Limit:   limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if textFormat() {
		for _, r := range results {
			loc := r.File
			if r.Line >= 0 {
				loc = fmt.Sprintf("%s:%d", r.File, r.Line+1)
			}
			fmt.Printf("%s  %s  %s\n", r.Entry.ID, loc, r.Entry.Desc)
		}
		return
	}
	printJSON(results)
}
