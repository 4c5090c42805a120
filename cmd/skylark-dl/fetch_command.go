package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/deps"
	"github.com/handiism/skylark-downloader/internal/download"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/status"
)

type fetchOptions struct {
	output      string
	format      string
	quality     string
	bitrate     string
	concurrency int
	subtitles   string
	numbering   bool
	playlistDir bool
	dryRun      bool
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch <URL>...",
		Short: "Resolve URLs into a queue and download it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := applyFetchFlags(cmd, settings, opts); err != nil {
				return err
			}
			return runFetch(cmd, ctx, settings, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Output directory (defaults to the configured save path, then the working directory)")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: video or audio")
	flags.StringVarP(&opts.quality, "quality", "q", "", "Video quality: Highest, 1080p, 720p, 480p or Lowest")
	flags.StringVar(&opts.bitrate, "bitrate", "", "Audio bitrate: 128K, 192K, 256K or 320K")
	flags.IntVarP(&opts.concurrency, "concurrency", "n", 0, "Downloads at once (1-5)")
	flags.StringVar(&opts.subtitles, "subs", "", "Subtitle language code, or \"all\"")
	flags.BoolVar(&opts.numbering, "number", false, "Prefix file names with their queue position")
	flags.BoolVar(&opts.playlistDir, "playlist-folder", false, "Save playlist items in a subfolder named after the playlist")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Resolve and list the queue without downloading")
	return cmd
}

// applyFetchFlags overrides settings with every flag the user set.
func applyFetchFlags(cmd *cobra.Command, s *config.Settings, opts fetchOptions) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		s.Format = opts.format
	}
	if flags.Changed("quality") {
		s.VideoQuality = opts.quality
	}
	if flags.Changed("bitrate") {
		s.AudioBitrate = opts.bitrate
	}
	if flags.Changed("concurrency") {
		s.ConcurrentDownloads = opts.concurrency
	}
	if flags.Changed("subs") {
		s.DownloadSubtitles = opts.subtitles != ""
		s.AllSubtitles = strings.EqualFold(opts.subtitles, "all")
		if !s.AllSubtitles {
			s.SubtitleLanguage = opts.subtitles
		}
	}
	if flags.Changed("number") {
		s.AddNumbering = opts.numbering
	}
	if flags.Changed("playlist-folder") {
		s.CreatePlaylistFolder = opts.playlistDir
	}
	return s.Validate()
}

func runFetch(cmd *cobra.Command, ctx *commandContext, settings *config.Settings, opts fetchOptions, urls []string) error {
	out := cmd.OutOrStdout()
	logger := ctx.ensureLogger(settings)

	capability := deps.Check(settings)
	if err := capability.Err(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), renderDeps(capability))
		return err
	}
	if !capability.Has("ffmpeg") {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: ffmpeg not found; merging and conversion will fail.")
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := status.NewReporter()
	printer := newEventPrinter(out, ctx.verbose())
	unsubscribe := reporter.SubscribeFunc(printer.Print)
	defer unsubscribe()

	manager := download.NewManager(settings,
		download.WithEvents(reporter),
		download.WithManagerLogger(logger),
	)
	defer manager.Close()

	if _, err := manager.Initialize(runCtx, strings.Join(urls, "\n")); err != nil && runCtx.Err() != nil {
		return context.Canceled
	}
	if manager.Store().Len() == 0 {
		return errors.New("nothing to download")
	}

	if opts.dryRun {
		manager.Resolver().Wait()
		fmt.Fprintln(out, renderQueue(manager.Store().Snapshot()))
		return nil
	}

	dir, err := manager.OutputDir(opts.output)
	if errors.Is(err, download.ErrNoOutputDir) {
		dir, err = os.Getwd()
	}
	if err != nil {
		return err
	}

	report, finished, err := manager.StartDownloads(runCtx, dir)
	if err != nil {
		return err
	}
	printReport(out, report, finished)

	if runCtx.Err() != nil {
		return context.Canceled
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", report.Failed, len(report.Results))
	}
	return nil
}

func renderQueue(items []*model.QueueItem) string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		duration := "-"
		if item.DurationSeconds > 0 {
			duration = (time.Duration(item.DurationSeconds) * time.Second).String()
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.Title,
			item.UploaderName,
			duration,
			item.PlaylistTitle,
			item.DetailStatus.String(),
		})
	}
	return renderTable(
		[]string{"#", "Title", "Uploader", "Duration", "Playlist", "Details"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func printReport(out io.Writer, report download.BatchReport, finished download.FinishSummary) {
	results := slices.Clone(report.Results)
	slices.SortFunc(results, func(a, b model.JobResult) int {
		return cmp.Compare(a.Position, b.Position)
	})

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		outcome := "ok"
		if !res.Success {
			outcome = res.ErrorKind.String() + ": " + res.Diagnostic
		}
		rows = append(rows, []string{
			strconv.Itoa(res.Position),
			res.Item.Title,
			outcome,
			res.Elapsed.Round(time.Second).String(),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Result", "Time"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(out, "Complete! %d succeeded, %d failed in %s\n",
		report.Succeeded, report.Failed, report.Elapsed.Round(time.Second))
	for _, dir := range report.OutputDirs {
		fmt.Fprintf(out, "  saved to %s\n", dir)
	}
	for _, path := range finished.Playlists {
		fmt.Fprintf(out, "  playlist %s\n", path)
	}
}
