// Package cmd implements the reprise command-line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/history"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
	rootCmd.Flags().BoolP("continue", "c", false, "Resume the most recently played dataset")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant (emoji, nerd, plain, kaomoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Remember where playback stopped")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnStop, rootCmd.PersistentFlags().Lookup("write-history")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

var rootCmd = &cobra.Command{
	Use:   constant.Reprise,
	Short: "Loop short video windows around vocabulary markers",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.Reprise) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - loop short video windows around vocabulary markers until they stick"),
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if !lo.Must(cmd.Flags().GetBool("continue")) {
			handleErr(cmd.Help())
			return
		}

		recent, err := history.Recent()
		handleErr(err)
		if len(recent) == 0 {
			handleErr(fmt.Errorf("nothing to continue, play a dataset first"))
		}

		handleErr(runPlay(recent[0].DatasetID, playOptions{resume: true}))
	},
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
