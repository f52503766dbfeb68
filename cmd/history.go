package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reprise-cli/reprise/history"
	"github.com/reprise-cli/reprise/marker"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show where each dataset was left off",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.Recent()
		handleErr(err)

		if len(entries) == 0 {
			cmd.Println("nothing played yet")
			return
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Dataset", "Title", "At", "Label", "Played"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.DatasetID,
				e.Title,
				marker.FormatTime(float64(e.Key)),
				e.Label,
				e.PlayedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		t.Render()
	},
}
