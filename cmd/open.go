package cmd

import (
	"fmt"

	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/open"
	"github.com/reprise-cli/reprise/video"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:               "open <dataset> [time]",
	Short:             "Open the dataset's video in the browser",
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completionDatasets,
	Run: func(cmd *cobra.Command, args []string) {
		d, err := resolveDataset(dataset.DefaultStore(), args[0])
		handleErr(err)

		target := d.Source
		if d.VideoID != "" {
			target = video.WatchURL(d.VideoID)
			if len(args) == 2 {
				t, err := marker.ParseTime(args[1])
				handleErr(err)
				target = video.WatchURLAt(d.VideoID, t)
			}
		}

		if target == "" {
			handleErr(fmt.Errorf("dataset %s has no source to open", d.ID))
		}

		handleErr(open.Start(target))
		fmt.Printf("%s opened %s\n", icon.Get(icon.Video), target)
	},
}
