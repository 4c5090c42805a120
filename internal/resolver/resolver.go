package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	ioutils "github.com/handiism/skylark-downloader/internal/io"
	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/process"
	"github.com/handiism/skylark-downloader/internal/queue"
	"github.com/handiism/skylark-downloader/internal/resolver/dto"
	"github.com/handiism/skylark-downloader/internal/status"
)

// Defaults applied by New.
const (
	DefaultBinary            = "yt-dlp"
	DefaultListTimeout       = time.Hour
	DefaultDetailTimeout     = 2 * time.Minute
	DefaultThumbnailTimeout  = 10 * time.Second
	DefaultDetailConcurrency = 8
	PreviewWidth             = 160
	PreviewHeight            = 90
)

// ThumbnailFetcher downloads thumbnail bytes.
type ThumbnailFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Summary describes the outcome of one Add.
type Summary struct {
	// Added is the number of newly queued items.
	Added int
	// Skipped counts records marked removed, private or unavailable, and
	// records without any URL.
	Skipped int
	// Duplicates counts records whose URL was already queued.
	Duplicates int
	// Malformed counts lines that were not valid JSON.
	Malformed int
}

// Partial reports whether some records were not queued.
func (s Summary) Partial() bool {
	return s.Skipped > 0 || s.Duplicates > 0
}

// Resolver runs the external resolver and feeds the queue.
type Resolver struct {
	store  *queue.Store
	runner process.Runner
	sink   status.Sink
	logger *slog.Logger

	binary            string
	listTimeout       time.Duration
	detailTimeout     time.Duration
	thumbnailTimeout  time.Duration
	detailConcurrency int

	thumbs ThumbnailFetcher
	images *ioutils.ImageService

	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBinary sets the resolver executable.
func WithBinary(binary string) Option {
	return func(r *Resolver) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// WithTimeouts sets the listing, detail and thumbnail timeouts. Zero values
// keep the defaults.
func WithTimeouts(list, detail, thumbnail time.Duration) Option {
	return func(r *Resolver) {
		if list > 0 {
			r.listTimeout = list
		}
		if detail > 0 {
			r.detailTimeout = detail
		}
		if thumbnail > 0 {
			r.thumbnailTimeout = thumbnail
		}
	}
}

// WithDetailConcurrency bounds how many detail fetches run at once.
func WithDetailConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.detailConcurrency = n
		}
	}
}

// WithThumbnails enables thumbnail downloads. Without it thumbnails stay
// in ThumbnailPending.
func WithThumbnails(fetcher ThumbnailFetcher, images *ioutils.ImageService) Option {
	return func(r *Resolver) {
		r.thumbs = fetcher
		r.images = images
	}
}

// WithSink sets the status sink.
func WithSink(sink status.Sink) Option {
	return func(r *Resolver) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.OrNop(logger)
	}
}

// New creates a Resolver that inserts into store and runs processes through runner.
func New(store *queue.Store, runner process.Runner, opts ...Option) *Resolver {
	r := &Resolver{
		store:             store,
		runner:            runner,
		sink:              status.Discard,
		logger:            logging.NewNop(),
		binary:            DefaultBinary,
		listTimeout:       DefaultListTimeout,
		detailTimeout:     DefaultDetailTimeout,
		thumbnailTimeout:  DefaultThumbnailTimeout,
		detailConcurrency: DefaultDetailConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.thumbs != nil && r.images == nil {
		r.images = ioutils.NewImageService()
	}
	r.sem = semaphore.NewWeighted(int64(r.detailConcurrency))
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r
}

// Add validates url, lists it and queues every usable record.
//
// Validation errors (model.ErrValidation) and resolution errors
// (model.ErrResolution) abort the add. Skipped and duplicate records are
// reported in the Summary and as a warning event, never as an error.
func (r *Resolver) Add(ctx context.Context, url string) (Summary, error) {
	staged, release, err := r.store.Stage(url)
	if err != nil {
		status.Message(r.sink, status.LevelError, "Error: %v", err)
		return Summary{}, err
	}
	defer release()

	status.Message(r.sink, status.LevelInfo, "Fetching info for %s ...", staged)

	var summary Summary
	records, err := r.FastList(ctx, staged, func(rec dto.Record) bool {
		return r.queueRecord(rec, &summary)
	})
	summary.Malformed = records.Malformed
	if err != nil {
		status.Message(r.sink, status.LevelError, "Error: %v", err)
		return summary, err
	}

	r.sink.Publish(status.Event{
		Kind:      status.KindResolved,
		Level:     status.LevelSuccess,
		Message:   fmt.Sprintf("Added %d item(s) to the queue.", summary.Added),
		Completed: summary.Added,
		Total:     records.Records,
	})
	if summary.Partial() {
		status.Message(r.sink, status.LevelWarning, "Skipped %d unavailable and %d duplicate item(s).",
			summary.Skipped, summary.Duplicates)
	}
	return summary, nil
}

// queueRecord inserts rec and reports whether it named a usable source.
// Duplicates are usable; unavailable and URL-less records are not.
func (r *Resolver) queueRecord(rec dto.Record, summary *Summary) bool {
	url := rec.SourceURL()
	if url == "" || rec.Unavailable() {
		summary.Skipped++
		r.logger.Debug("skipping unavailable record", slog.String("title", rec.Title))
		return false
	}

	entry := queue.Entry{URL: url, Title: rec.DisplayTitle(), PlaylistTitle: rec.PlaylistTitle}
	if !rec.NeedsDetail() {
		d := detailsFrom(rec)
		entry.Details = &d
	}
	item, err := r.store.Insert(entry)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			summary.Duplicates++
			return true
		}
		summary.Skipped++
		r.logger.Warn("record not queued", slog.String("url", url), slog.Any("error", err))
		return false
	}
	summary.Added++

	if rec.NeedsDetail() {
		r.schedule(item, true)
	} else if item.ThumbnailState == model.ThumbnailPending {
		r.schedule(item, false)
	}
	return true
}

// ListStats counts what a FastList run produced.
type ListStats struct {
	// Records counts well-formed lines.
	Records int
	// Usable counts records the callback accepted.
	Usable    int
	Malformed int
	ExitCode  int
}

// FastList runs the resolver in flat-playlist mode and calls fn for every
// well-formed record as soon as its line is read. fn reports whether the
// record was usable. Malformed lines are logged and skipped.
//
// It returns a *model.ResolutionError when no usable record was produced.
// A non-zero exit after at least one usable record is not an error.
func (r *Resolver) FastList(ctx context.Context, url string, fn func(dto.Record) bool) (ListStats, error) {
	var stats ListStats
	args := []string{"--flat-playlist", "--ignore-errors", "-j", url}

	res, err := r.runner.Stream(ctx, r.binary, args, r.listTimeout, func(line []byte) {
		var rec dto.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			stats.Malformed++
			r.logger.Warn("skipping malformed resolver line",
				slog.String("url", url),
				slog.Int("length", len(line)),
				slog.Any("error", err),
			)
			return
		}
		stats.Records++
		if fn(rec) {
			stats.Usable++
		}
	})
	stats.ExitCode = res.ExitCode
	if err != nil {
		return stats, model.Wrap(model.ErrResolution, "list", url, err)
	}
	if stats.Usable > 0 {
		if !res.Success() {
			r.logger.Info("resolver exited with partial listing",
				slog.String("url", url),
				slog.Int("exit_code", res.ExitCode),
				slog.Int("records", stats.Usable),
			)
		}
		return stats, nil
	}

	last := res.LastLine()
	switch {
	case res.TimedOut:
		last = "timeout: " + orDefault(last, "resolver did not finish")
	case res.Cancelled:
		last = "cancelled"
	case stats.Records > 0 && (last == "" || res.Success()):
		last = "no usable records"
	case last == "":
		last = "no video data received"
	}
	return stats, &model.ResolutionError{URL: url, ExitCode: res.ExitCode, LastLine: last}
}

// FetchDetail runs the resolver for a single item and returns its details.
func (r *Resolver) FetchDetail(ctx context.Context, url string) (model.Details, error) {
	args := []string{"-j", "--no-playlist", url}
	res, err := r.runner.Run(ctx, r.binary, args, r.detailTimeout)
	if err != nil {
		return model.Details{}, model.Wrap(model.ErrDetailFetch, "detail", url, err)
	}
	if !res.Success() {
		msg := res.LastLine()
		if res.TimedOut {
			msg = "timeout"
		}
		return model.Details{}, model.Wrap(model.ErrDetailFetch, "detail", url, errors.New(orDefault(msg, fmt.Sprintf("exit code %d", res.ExitCode))))
	}

	for _, line := range bytes.Split(res.Stdout, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec dto.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		return detailsFrom(rec), nil
	}
	return model.Details{}, model.Wrap(model.ErrDetailFetch, "detail", url, errors.New("no record in output"))
}

// schedule starts a background task for item. withDetail runs the detail
// fetch first; otherwise only the thumbnail is loaded.
func (r *Resolver) schedule(item *model.QueueItem, withDetail bool) {
	url, pos, title := item.URL, item.Position, item.Title
	thumbURL := item.ThumbnailURL

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return
		}
		defer r.sem.Release(1)

		if withDetail {
			var ok bool
			thumbURL, ok = r.resolveDetail(r.ctx, url, pos, title)
			if !ok {
				return
			}
		}
		if thumbURL != "" {
			r.loadThumbnail(r.ctx, url, pos, thumbURL)
		}
	}()
}

// resolveDetail fetches and applies details. It returns the selected
// thumbnail URL and false when the item is gone or the fetch failed.
func (r *Resolver) resolveDetail(ctx context.Context, url string, pos int, title string) (string, bool) {
	live := r.store.Update(url, pos, func(q *model.QueueItem) {
		q.DetailStatus = model.DetailFetching
	})
	if !live {
		return "", false
	}

	details, err := r.FetchDetail(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", false
		}
		r.logger.Warn("detail fetch failed", slog.String("url", url), slog.Any("error", err))
		if r.store.Update(url, pos, func(q *model.QueueItem) { q.DetailStatus = model.DetailFailed }) {
			status.Message(r.sink, status.LevelWarning, "Could not load details for %q.", title)
		}
		return "", false
	}

	if !r.store.Update(url, pos, func(q *model.QueueItem) { q.ApplyDetails(details) }) {
		return "", false
	}
	return details.ThumbnailURL, true
}

func (r *Resolver) loadThumbnail(ctx context.Context, url string, pos int, thumbURL string) {
	if r.thumbs == nil {
		return
	}
	preview, err := r.fetchPreview(ctx, thumbURL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Debug("thumbnail unavailable", slog.String("url", url), slog.Any("error", err))
		r.store.Update(url, pos, func(q *model.QueueItem) { q.ThumbnailState = model.ThumbnailPlaceholder })
		return
	}
	r.store.Update(url, pos, func(q *model.QueueItem) {
		q.Thumbnail = preview
		q.ThumbnailState = model.ThumbnailLoaded
	})
}

func (r *Resolver) fetchPreview(ctx context.Context, thumbURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.thumbnailTimeout)
	defer cancel()

	data, err := r.thumbs.Get(ctx, thumbURL)
	if err != nil {
		return nil, model.Wrap(model.ErrThumbnail, "fetch", thumbURL, err)
	}
	preview, err := r.images.Thumbnail(data, PreviewWidth, PreviewHeight)
	if err != nil {
		return nil, model.Wrap(model.ErrThumbnail, "decode", thumbURL, err)
	}
	return preview, nil
}

// RetryFailed runs detail fetches again for every item in DetailFailed and
// waits for them. It returns how many items resolved.
func (r *Resolver) RetryFailed(ctx context.Context) int {
	var targets []*model.QueueItem
	for _, item := range r.store.Snapshot() {
		if item.DetailStatus == model.DetailFailed {
			targets = append(targets, item)
		}
	}

	var (
		mu       sync.Mutex
		resolved int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.detailConcurrency)
	for _, item := range targets {
		g.Go(func() error {
			thumbURL, ok := r.resolveDetail(gctx, item.URL, item.Position, item.Title)
			if !ok {
				return nil
			}
			mu.Lock()
			resolved++
			mu.Unlock()
			if thumbURL != "" {
				r.loadThumbnail(gctx, item.URL, item.Position, thumbURL)
			}
			return nil
		})
	}
	_ = g.Wait()
	return resolved
}

// Wait blocks until every scheduled background task has finished.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// Close cancels pending background tasks and waits for them to stop.
func (r *Resolver) Close() {
	r.cancel()
	r.wg.Wait()
}

func detailsFrom(rec dto.Record) model.Details {
	return model.Details{
		UploaderName:      rec.UploaderName(),
		DurationSeconds:   rec.DurationSeconds(),
		ViewCount:         rec.Views(),
		SubtitleLanguages: rec.SubtitleLanguages(),
		ThumbnailURL:      SelectThumbnail(rec.Thumbnails),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
