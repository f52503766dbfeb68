package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/icon"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of standard output")
}

var exportCmd = &cobra.Command{
	Use:               "export <dataset>",
	Short:             "Write a dataset back out as a marker file",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionDatasets,
	Run: func(cmd *cobra.Command, args []string) {
		d, err := resolveDataset(dataset.DefaultStore(), args[0])
		handleErr(err)

		output := lo.Must(cmd.Flags().GetString("output"))
		if output == "" || output == "-" {
			handleErr(dataset.Format(os.Stdout, d))
			return
		}

		var buf bytes.Buffer
		handleErr(dataset.Format(&buf, d))
		handleErr(filesystem.WriteAtomic(output, buf.Bytes()))

		fmt.Fprintf(os.Stderr, "%s exported %s to %s\n", icon.Get(icon.Success), d.ID, output)
	},
}
