package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/reprise-cli/reprise/video"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("source", "s", "", "Video URL or media path, overrides the file's # source")
	importCmd.Flags().StringP("title", "t", "", "Dataset title, overrides the file's # title")
	importCmd.Flags().Float64P("window", "w", 0, "Window length in seconds for this dataset")
	importCmd.Flags().String("id", "", "Dataset id (derived from the title by default)")
	importCmd.Flags().BoolP("force", "f", false, "Replace an existing dataset with the same id")
	importCmd.Flags().Bool("reset", false, "With --force, drop the known levels of the replaced dataset")
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a marker file as a dataset",
	Long: `Import a marker file as a dataset.

Each line is a time, a label and an optional level separated by tabs:

  # title: Lesson 3
  # source: https://youtu.be/dQw4w9WgXcQ
  0:12.5	hola	known
  15	adiós

Use - to read from standard input.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionMarkerFiles,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			source = lo.Must(cmd.Flags().GetString("source"))
			title  = lo.Must(cmd.Flags().GetString("title"))
			window = lo.Must(cmd.Flags().GetFloat64("window"))
			id     = lo.Must(cmd.Flags().GetString("id"))
			force  = lo.Must(cmd.Flags().GetBool("force"))
			reset  = lo.Must(cmd.Flags().GetBool("reset"))
		)

		doc, err := readDocument(args[0])
		handleErr(err)

		if source == "" {
			source = doc.Source
		}
		if window == 0 {
			window = doc.Window
		}

		videoID, err := video.ExtractID(source)
		if err != nil && !errors.Is(err, video.ErrNoID) {
			handleErr(err)
		}

		if title == "" {
			title = resolveTitle(cmd.Context(), doc, source, videoID, args[0])
		}

		if id == "" {
			id = dataset.NewID(title, videoID)
		}

		d := &dataset.Dataset{
			ID:      id,
			Title:   title,
			Source:  source,
			VideoID: videoID,
			Markers: doc.Markers,
		}

		if window > 0 {
			d.Window = &segment.WindowConfig{WindowSec: window}
		}

		store := dataset.DefaultStore()
		if store.Exists(id) {
			if !force {
				handleErr(fmt.Errorf("dataset %s already exists, pass --force to replace it", id))
			}

			if !reset {
				previous, err := store.Load(id)
				handleErr(err)
				d.Markers = dataset.CarryLevels(previous.Markers, d.Markers)
			}
		}

		handleErr(store.Save(d))

		fmt.Printf(
			"%s imported %s as %s (%s)\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(d.Title),
			style.Fg(color.Yellow)(d.ID),
			util.Quantify(len(d.Markers), "marker", "markers"),
		)
	},
}

func completionMarkerFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"txt", "tsv"}, cobra.ShellCompDirectiveFilterFileExt
}

func readDocument(path string) (*dataset.Document, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		file, err := filesystem.API().Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	doc, err := dataset.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// resolveTitle falls back from the file's directive to the remote video
// title, then the page title, then the file name.
func resolveTitle(ctx context.Context, doc *dataset.Document, source, videoID, path string) string {
	if doc.Title != "" {
		return doc.Title
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if viper.GetBool(key.VideoFetchTitle) {
		var (
			title string
			err   error
		)

		switch {
		case videoID != "":
			title, err = video.Title(ctx, videoID)
		case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
			title, err = video.PageTitle(ctx, source)
		}

		if err != nil {
			log.Warn(err)
		} else if title != "" {
			return title
		}
	}

	if path != "-" {
		return util.FileStem(path)
	}
	if videoID != "" {
		return videoID
	}
	return "Untitled"
}
