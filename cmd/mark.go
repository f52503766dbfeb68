package cmd

import (
	"fmt"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/progress"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(markCmd)
	markCmd.Flags().BoolP("unknown", "u", false, "Mark as not known")
	markCmd.Flags().BoolP("toggle", "t", false, "Flip the current level")
	markCmd.MarkFlagsMutuallyExclusive("unknown", "toggle")
}

var markCmd = &cobra.Command{
	Use:   "mark <dataset> <time>",
	Short: "Mark the marker at a time as known",
	Example: "  reprise mark spanish 0:12.5\n" +
		"  reprise mark spanish 15 --unknown",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionDatasets,
	Run: func(cmd *cobra.Command, args []string) {
		store := dataset.DefaultStore()
		d, err := resolveDataset(store, args[0])
		handleErr(err)

		t, err := marker.ParseTime(args[1])
		handleErr(err)

		gate := progress.New(d, config.Window(), store)
		at := segment.Key(t)

		current, ok := gate.Level(at).Get()
		if !ok {
			handleErr(fmt.Errorf("no marker at %s in %s", marker.FormatTime(t), d.Title))
		}

		var level marker.Level
		switch {
		case lo.Must(cmd.Flags().GetBool("toggle")):
			level = current.Toggle()
		case lo.Must(cmd.Flags().GetBool("unknown")):
			level = marker.Unknown
		default:
			level = marker.Known
		}

		handleErr(gate.SetLevel(at, level))

		fmt.Printf(
			"%s %s at %s is %s\n",
			icon.Get(lo.Ternary(level == marker.Known, icon.Known, icon.Unknown)),
			style.Fg(color.Purple)(d.Title),
			style.Fg(color.Yellow)(marker.FormatTime(t)),
			level,
		)
	},
}
