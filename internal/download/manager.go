package download

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/handiism/skylark-downloader/internal/audio"
	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/http"
	ioutils "github.com/handiism/skylark-downloader/internal/io"
	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/process"
	"github.com/handiism/skylark-downloader/internal/queue"
	"github.com/handiism/skylark-downloader/internal/resolver"
	"github.com/handiism/skylark-downloader/internal/status"
)

// ErrNoOutputDir is returned when a batch has no destination directory.
var ErrNoOutputDir = errors.New("no output directory selected")

// Manager wires the queue, resolver and orchestrator for one session.
type Manager struct {
	settings     *config.Settings
	store        *queue.Store
	resolver     *resolver.Resolver
	orchestrator *Orchestrator
	finisher     *Finisher
	sink         status.Sink
	logger       *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	runner   process.Runner
	sink     status.Sink
	logger   *slog.Logger
	previews bool
}

// WithRunner replaces the process runner. Tests use it to avoid real binaries.
func WithRunner(runner process.Runner) ManagerOption {
	return func(o *managerOptions) { o.runner = runner }
}

// WithEvents sets the sink every component publishes to.
func WithEvents(sink status.Sink) ManagerOption {
	return func(o *managerOptions) { o.sink = sink }
}

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(o *managerOptions) { o.logger = logger }
}

// WithPreviews enables thumbnail preview fetching.
func WithPreviews(enabled bool) ManagerOption {
	return func(o *managerOptions) { o.previews = enabled }
}

// NewManager creates a Manager for settings. An unknown playlist format
// falls back to M3U with a warning.
func NewManager(settings *config.Settings, opts ...ManagerOption) *Manager {
	o := managerOptions{sink: status.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.OrNop(o.logger)
	if o.runner == nil {
		o.runner = process.NewExec(logger)
	}
	if o.sink == nil {
		o.sink = status.Discard
	}

	store := queue.New(queue.WithSink(o.sink), queue.WithLogger(logger))

	resolverOpts := []resolver.Option{
		resolver.WithBinary(settings.Resolver()),
		resolver.WithTimeouts(settings.ProcessTimeout(), settings.DetailTimeout(), settings.ThumbnailTimeout()),
		resolver.WithDetailConcurrency(settings.DetailConcurrency),
		resolver.WithSink(o.sink),
		resolver.WithLogger(logger),
	}
	if o.previews {
		resolverOpts = append(resolverOpts, resolver.WithThumbnails(
			http.NewClient(settings.ThumbnailTimeout()),
			ioutils.NewImageService(),
		))
	}

	finishOpts := []FinishOption{
		WithTagging(settings.TagAudio),
		WithFinishSink(o.sink),
		WithFinishLogger(logger),
	}
	if settings.CreatePlaylistFile {
		format, err := audio.ParsePlaylistFormat(settings.PlaylistFormat)
		if err != nil {
			logger.Warn("invalid playlist format, using m3u",
				slog.String("playlist_format", settings.PlaylistFormat),
				slog.Any("error", err),
			)
			status.Message(o.sink, status.LevelWarning, "Unknown playlist format %q, writing M3U playlists.", settings.PlaylistFormat)
		}
		finishOpts = append(finishOpts, WithPlaylists(format))
	}

	return &Manager{
		settings: settings,
		store:    store,
		resolver: resolver.New(store, o.runner, resolverOpts...),
		orchestrator: NewOrchestrator(o.runner,
			WithBinary(settings.Executor()),
			WithTimeout(settings.ProcessTimeout()),
			WithSink(o.sink),
			WithLogger(logger),
		),
		finisher: NewFinisher(finishOpts...),
		sink:     o.sink,
		logger:   logger,
	}
}

// Store returns the session queue.
func (m *Manager) Store() *queue.Store {
	return m.store
}

// Resolver returns the session resolver.
func (m *Manager) Resolver() *resolver.Resolver {
	return m.resolver
}

// Orchestrator returns the session orchestrator.
func (m *Manager) Orchestrator() *Orchestrator {
	return m.orchestrator
}

// ParseInputURLs splits free-form input on newlines, commas and spaces.
func ParseInputURLs(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ' ' || r == '\t'
	})
}

// Initialize resolves every URL in input into the queue. A URL that fails
// does not stop the others; the returned error joins every failure.
func (m *Manager) Initialize(ctx context.Context, input string) (resolver.Summary, error) {
	var (
		total resolver.Summary
		errs  []error
	)
	for _, url := range ParseInputURLs(input) {
		summary, err := m.resolver.Add(ctx, url)
		total.Added += summary.Added
		total.Skipped += summary.Skipped
		total.Duplicates += summary.Duplicates
		total.Malformed += summary.Malformed
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// OutputDir picks the batch destination: override when set, otherwise the
// configured default save path.
func (m *Manager) OutputDir(override string) (string, error) {
	if dir := strings.TrimSpace(override); dir != "" {
		return dir, nil
	}
	if dir := m.settings.SavePath(); dir != "" {
		return dir, nil
	}
	return "", ErrNoOutputDir
}

// StartDownloads runs every queued item as one batch into outputDir and
// post-processes the results.
func (m *Manager) StartDownloads(ctx context.Context, outputDir string) (BatchReport, FinishSummary, error) {
	if m.store.Len() == 0 {
		status.Message(m.sink, status.LevelWarning, "Queue is empty.")
		return BatchReport{}, FinishSummary{}, model.Wrap(model.ErrEmptyBatch, "start downloads", "queue is empty", nil)
	}
	cfg, err := m.settings.ToJobConfig(outputDir)
	if err != nil {
		return BatchReport{}, FinishSummary{}, err
	}
	if err := ioutils.EnsureDir(outputDir); err != nil {
		return BatchReport{}, FinishSummary{}, err
	}

	report, err := m.orchestrator.RunQueue(ctx, m.store, cfg)
	if err != nil {
		return report, FinishSummary{}, err
	}
	summary := m.finisher.Finish(report, cfg)
	m.logger.Info("batch finished",
		slog.String("batch_id", report.ID),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Int("tagged", summary.Tagged),
		slog.Int("playlists", len(summary.Playlists)),
		slog.Duration("elapsed", report.Elapsed),
	)
	return report, summary, nil
}

// Close stops background metadata work.
func (m *Manager) Close() {
	m.resolver.Close()
}
