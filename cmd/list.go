package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("json", "j", false, "Print the index as JSON")
	listCmd.Flags().Bool("reindex", false, "Rebuild the index from the dataset files first")

	listCmd.SetOut(os.Stdout)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored datasets",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := dataset.DefaultStore()

		if lo.Must(cmd.Flags().GetBool("reindex")) {
			_, err := store.Reindex()
			handleErr(err)
		}

		metas, err := store.List()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(metas))
			return
		}

		if len(metas) == 0 {
			cmd.Printf("%s no datasets yet, try %s\n", icon.Get(icon.Dataset), style.Fg(color.Yellow)("reprise import <file>"))
			return
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Title", "Known", "Video", "Updated"})
		for _, m := range metas {
			t.AppendRow(table.Row{
				m.ID,
				m.Title,
				fmt.Sprintf("%d/%d", m.Known, m.Markers),
				lo.Ternary(m.VideoID == "", "-", m.VideoID),
				m.UpdatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		t.Render()
	},
}
