package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/util"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget is a file or directory that can be wiped without losing datasets.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"history file", "history", mo.Some("s"), where.History},
	{"dataset index", "index", mo.Some("i"), where.Index},
	{"temp directory", "temp", mo.None[string](), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached titles, history and the dataset index",
	Long: "Clear cached titles, history and the dataset index.\n" +
		"The index is rebuilt from the dataset files the next time it is needed.",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		doClear := func(what string) bool {
			return lo.Must(cmd.Flags().GetBool(what))
		}

		for _, target := range clearTargets {
			if doClear(target.argLong) {
				anyCleared = true
				e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), util.Capitalize(target.name)))
				err := util.Delete(target.location())
				e()
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					handleErr(err)
				}
				fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
			}
		}

		if !anyCleared {
			handleErr(cmd.Help())
			return
		}

		if doClear("index") {
			_, err := dataset.DefaultStore().Reindex()
			handleErr(err)
		}
	},
}
