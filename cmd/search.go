package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	searchMode string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-shot contact search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(args[0])
		if query == "" {
			return eris.New("query must not be empty")
		}

		var mode model.SearchMode
		switch searchMode {
		case "directory":
			mode = model.ModeDirectory
		case "web":
			mode = model.ModeWebSearch
		default:
			return eris.Errorf("unknown mode %q (want directory or web)", searchMode)
		}

		e, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		resp, err := e.Service.Run(cmd.Context(), query, mode)
		if err != nil {
			return err
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Business", "Email", "Phone", "Website"})
		for i, rec := range resp.Data {
			t.AppendRow(table.Row{i + 1, rec.BusinessName, rec.Email, rec.Phone, rec.Website})
		}
		t.Render()
		fmt.Printf("%d result(s) for %q\n", resp.ResultsCount, resp.SearchTerm)

		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "directory", "search surface: directory or web")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit the raw response envelope as JSON")
	rootCmd.AddCommand(searchCmd)
}
