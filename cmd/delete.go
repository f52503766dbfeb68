package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/history"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var deleteCmd = &cobra.Command{
	Use:               "delete <dataset>",
	Short:             "Delete a dataset and its history",
	Aliases:           []string{"rm"},
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionDatasets,
	Run: func(cmd *cobra.Command, args []string) {
		store := dataset.DefaultStore()
		meta, err := store.Find(args[0])
		handleErr(err)

		if !lo.Must(cmd.Flags().GetBool("yes")) {
			confirm := survey.Confirm{
				Message: fmt.Sprintf("Delete %s (%d markers, %d known)?", meta.Title, meta.Markers, meta.Known),
				Default: false,
			}
			var response bool
			handleErr(survey.AskOne(&confirm, &response))

			if !response {
				return
			}
		}

		handleErr(store.Delete(meta.ID))
		if err := history.Remove(meta.ID); err != nil {
			log.Warn(err)
		}

		fmt.Printf(
			"%s deleted %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(meta.Title),
		)
	},
}
