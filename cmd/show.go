package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/history"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolP("unknown", "u", false, "Only show markers that are not known yet")

	showCmd.SetOut(os.Stdout)
}

var showCmd = &cobra.Command{
	Use:               "show <dataset>",
	Short:             "Show the segments of a dataset",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionDatasets,
	Run: func(cmd *cobra.Command, args []string) {
		d, err := resolveDataset(dataset.DefaultStore(), args[0])
		handleErr(err)

		window := d.EffectiveWindow(config.Window())
		segments := segment.Build(d.Markers, window)
		if lo.Must(cmd.Flags().GetBool("unknown")) {
			segments = lo.Filter(segments, func(s segment.Segment, _ int) bool {
				return s.Level == marker.Unknown
			})
		}

		cmd.Println(style.Bold(d.Title))
		if d.Source != "" {
			cmd.Println(style.Faint(d.Source))
		}
		if entry, ok := history.Last(d.ID).Get(); ok {
			cmd.Println(style.Faint(fmt.Sprintf("last played %s", entry.PlayedAt.Local().Format("2006-01-02 15:04"))))
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"", "Start", "End", "Label"})
		for _, s := range segments {
			t.AppendRow(table.Row{
				icon.Get(lo.Ternary(s.Level == marker.Known, icon.Known, icon.Unknown)),
				marker.FormatTime(s.Start),
				marker.FormatTime(s.End),
				s.Label,
			})
		}
		t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d known", d.Known(), len(d.Markers))})
		t.Render()
	},
}
