package main

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent search runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Path == "" {
			return eris.New("no store configured (set store.path)")
		}

		e, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		runs, err := e.Store.RecentRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run ID", "Query", "Mode", "Results", "When"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.ID, run.Query, run.Mode, run.ResultsCount,
				run.CreatedAt.Local().Format(time.RFC3339),
			})
		}
		t.Render()

		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
