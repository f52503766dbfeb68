package cmd

import (
	"context"
	"fmt"

	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/history"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/player"
	"github.com/reprise-cli/reprise/progress"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/sequence"
	"github.com/reprise-cli/reprise/tui"
	"github.com/reprise-cli/reprise/video"
	"github.com/reprise-cli/reprise/watch"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type playOptions struct {
	resume    bool
	loopsSet  bool
	all       bool
	noAdvance bool
	from      string
	watch     string
	attach    string
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntP("loops", "l", 3, "How many times each segment plays")
	lo.Must0(viper.BindPFlag(key.PlayerLoops, playCmd.Flags().Lookup("loops")))

	playCmd.Flags().Float64P("rate", "r", 1, "Playback speed multiplier")
	lo.Must0(viper.BindPFlag(key.PlayerRate, playCmd.Flags().Lookup("rate")))

	playCmd.Flags().BoolP("all", "a", false, "Schedule known markers too")
	playCmd.Flags().BoolP("no-advance", "n", false, "Stop after each segment instead of moving on")
	playCmd.Flags().BoolP("continue", "c", false, "Start where the last session of this dataset stopped")
	playCmd.Flags().StringP("from", "f", "", "Start at the first marker at or after this time (12.5, 1:02, 1:00:00)")
	playCmd.Flags().StringP("watch", "w", "", "Reload markers whenever this text file changes")
	playCmd.Flags().String("attach", "", "Use an mpv already listening on this IPC socket")

	playCmd.MarkFlagsMutuallyExclusive("continue", "from")
	lo.Must0(playCmd.MarkFlagFilename("watch", "txt"))
}

var playCmd = &cobra.Command{
	Use:               "play <dataset>",
	Short:             "Drill the markers of a dataset",
	Example:           "  reprise play spanish\n  reprise play lesson_3 --loops 5 --rate 0.75",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionDatasets,
	Run: func(cmd *cobra.Command, args []string) {
		options := playOptions{
			resume:    lo.Must(cmd.Flags().GetBool("continue")),
			loopsSet:  cmd.Flags().Changed("loops"),
			all:       lo.Must(cmd.Flags().GetBool("all")),
			noAdvance: lo.Must(cmd.Flags().GetBool("no-advance")),
			from:      lo.Must(cmd.Flags().GetString("from")),
			watch:     lo.Must(cmd.Flags().GetString("watch")),
			attach:    lo.Must(cmd.Flags().GetString("attach")),
		}

		handleErr(runPlay(args[0], options))
	},
}

func runPlay(query string, options playOptions) error {
	if options.attach == "" {
		if err := checkPlayer(); err != nil {
			return err
		}
	}

	store := dataset.DefaultStore()
	d, err := resolveDataset(store, query)
	if err != nil {
		return err
	}

	target := d.Source
	if target == "" && d.VideoID != "" {
		target = video.WatchURL(d.VideoID)
	}
	if target == "" && options.attach == "" {
		return fmt.Errorf("dataset %s has no media source, re-import it with --source", d.ID)
	}

	gate := progress.New(d, config.Window(), store)

	unknownOnly := viper.GetBool(key.SequenceUnknownOnly) && !options.all
	seq := sequence.New(gate, lo.Ternary[sequence.Filter](unknownOnly, sequence.UnknownOnly, sequence.All))

	start, err := startKey(d, seq, options)
	if err != nil {
		return err
	}

	host := player.NewHost(viper.GetString(key.PlayerDefault))
	defer func() {
		if err := host.Close(); err != nil {
			log.Warn(err)
		}
	}()

	loops := sessionLoops(d.ID, options)
	statuses := make(chan playback.Status, 64)
	window := gate.Window()
	controller := playback.New(host, seq, playback.Options{
		Loops:        loops,
		AutoAdvance:  viper.GetBool(key.PlayerAutoAdvance) && !options.noAdvance,
		PollInterval: window.PollInterval(),
		EndTolerance: window.EndTolerance,
		MaxFailures:  viper.GetInt(key.PlayerMaxFailures),
		Rate:         viper.GetFloat64(key.PlayerRate),
		SeekAhead:    viper.GetBool(key.PlayerSeekAhead),
		OnChange: func(status playback.Status) {
			select {
			case statuses <- status:
			default:
				log.Debugf("status dropped: %s", status)
			}
		},
	})
	defer controller.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notices := make(chan string, 8)
	if options.watch != "" {
		go func() {
			err := watch.File(ctx, options.watch, watch.DefaultDelay, func() {
				notice := reloadMarkers(gate, options.watch)
				select {
				case notices <- notice:
				default:
				}
			})
			if err != nil {
				log.Error(err)
			}
		}()
	}

	result, err := tui.Run(&tui.Options{
		Title:      d.Title,
		Controller: controller,
		Sequence:   seq,
		Gate:       gate,
		Launch: func() error {
			if options.attach != "" {
				return host.AttachTo(options.attach)
			}
			return host.Open(target, d.Title)
		},
		Statuses:    statuses,
		PlayerDone:  host.Done,
		Notices:     notices,
		UnknownOnly: unknownOnly,
		AutoAdvance: viper.GetBool(key.PlayerAutoAdvance) && !options.noAdvance,
		Rate:        viper.GetFloat64(key.PlayerRate),
		Start:       start,
	})
	if err != nil {
		return err
	}

	if last, ok := result.Last.Get(); ok && viper.GetBool(key.HistorySaveOnStop) {
		if err := history.Save(d.ID, d.Title, last, loops); err != nil {
			log.Warnf("could not save history: %v", err)
		}
	}

	return nil
}

// sessionLoops is the configured loop budget. A resumed session keeps the
// budget it was saved with unless --loops is given.
func sessionLoops(datasetID string, options playOptions) int {
	loops := viper.GetInt(key.PlayerLoops)
	if !options.resume || options.loopsSet {
		return loops
	}

	if entry, ok := history.Last(datasetID).Get(); ok && entry.Loops > 0 {
		return entry.Loops
	}
	return loops
}

// startKey picks the segment a session opens on, if any.
func startKey(d *dataset.Dataset, seq *sequence.State, options playOptions) (mo.Option[segment.Key], error) {
	var at mo.Option[segment.Key]

	switch {
	case options.from != "":
		t, err := marker.ParseTime(options.from)
		if err != nil {
			return mo.None[segment.Key](), err
		}
		at = mo.Some(segment.Key(t))
	case options.resume:
		if entry, ok := history.Last(d.ID).Get(); ok {
			at = mo.Some(entry.Key)
		} else {
			log.Infof("no history for %s, starting from the top", d.ID)
			return firstKey(seq), nil
		}
	default:
		return mo.None[segment.Key](), nil
	}

	want := at.MustGet()
	if seg, ok := seq.Lookup(want).Get(); ok {
		return mo.Some(seg.Key()), nil
	}
	if seg, ok := seq.NextAfter(want).Get(); ok {
		return mo.Some(seg.Key()), nil
	}

	return mo.None[segment.Key](), nil
}

func firstKey(seq *sequence.State) mo.Option[segment.Key] {
	if seg, ok := seq.First().Get(); ok {
		return mo.Some(seg.Key())
	}
	return mo.None[segment.Key]()
}

// reloadMarkers re-reads a watched text file into the open dataset and
// describes the outcome for the session's notification line.
func reloadMarkers(gate *progress.Gate, path string) string {
	file, err := filesystem.API().Open(path)
	if err != nil {
		log.Error(err)
		return "reload failed: " + err.Error()
	}
	defer file.Close()

	doc, err := dataset.Parse(file)
	if err != nil {
		log.Error(err)
		return "reload failed: " + err.Error()
	}

	markers := dataset.CarryLevels(gate.Markers(), doc.Markers)
	if err := gate.Replace(markers); err != nil {
		log.Error(err)
		return "reload failed: " + err.Error()
	}

	if doc.Window > 0 {
		if err := gate.SetWindow(segment.WindowConfig{WindowSec: doc.Window}); err != nil {
			log.Warn(err)
		}
	}

	log.Infof("reloaded %d markers from %s", len(markers), path)
	return fmt.Sprintf("reloaded %d markers", len(markers))
}
