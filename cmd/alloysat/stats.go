package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevinawalsh/alloysat/internal/historydb"
	"github.com/kevinawalsh/alloysat/internal/report"
)

func statsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Show recorded run history for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitUsage)
			}

			store, err := historydb.Open(historyDBPath())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitUsage)
			}
			defer store.Close()

			entries, err := store.Recent(sourceDigest(data), limit)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitUsage)
			}
			if len(entries) == 0 {
				fmt.Println("no recorded runs for this file")
				return nil
			}
			for _, e := range entries {
				fmt.Println(report.HistoryLine(e.Verdict, e.Decisions, e.Conflicts, e.SolveTimeMs, e.CreatedAt.Format("2006-01-02 15:04:05")))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	return cmd
}
