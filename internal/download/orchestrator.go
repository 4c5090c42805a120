package download

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/skylark-downloader/internal/jobspec"
	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/process"
	"github.com/handiism/skylark-downloader/internal/queue"
	"github.com/handiism/skylark-downloader/internal/status"
)

// State is the orchestrator's batch state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

// String returns a lower-case label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultTimeout bounds a single executor run.
const DefaultTimeout = time.Hour

// BatchReport summarizes a finished batch.
type BatchReport struct {
	ID string
	// Results are in completion order.
	Results   []model.JobResult
	Succeeded int
	Failed    int
	// OutputDirs lists the distinct directories of successful jobs, sorted.
	OutputDirs []string
	Elapsed    time.Duration
}

// Orchestrator runs one batch at a time.
type Orchestrator struct {
	runner  process.Runner
	binary  string
	timeout time.Duration
	sink    status.Sink
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	batchID string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBinary sets the executor binary.
func WithBinary(binary string) Option {
	return func(o *Orchestrator) {
		if binary != "" {
			o.binary = binary
		}
	}
}

// WithTimeout sets the per-job process timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSink sets the status sink.
func WithSink(sink status.Sink) Option {
	return func(o *Orchestrator) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.OrNop(logger)
	}
}

// NewOrchestrator creates an idle Orchestrator that runs jobs through runner.
func NewOrchestrator(runner process.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:  runner,
		binary:  "yt-dlp",
		timeout: DefaultTimeout,
		sink:    status.Discard,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current batch state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// BatchID returns the ID of the running or last batch.
func (o *Orchestrator) BatchID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.batchID
}

// Start launches a batch and returns a channel that receives one result per
// spec, in completion order, and is closed once the batch is Completed.
// limit is clamped to 1..5.
func (o *Orchestrator) Start(ctx context.Context, specs []model.JobSpec, limit int) (<-chan model.JobResult, error) {
	if len(specs) == 0 {
		return nil, model.Wrap(model.ErrEmptyBatch, "start", "", nil)
	}

	o.mu.Lock()
	if o.state == StateRunning {
		o.mu.Unlock()
		return nil, model.Wrap(model.ErrBatchRunning, "start", o.batchID, nil)
	}
	o.state = StateRunning
	o.batchID = uuid.NewString()
	batchID := o.batchID
	o.mu.Unlock()

	limit = model.ClampConcurrency(limit)
	total := len(specs)
	out := make(chan model.JobResult, total)

	o.logger.Info("batch started",
		slog.String("batch_id", batchID),
		slog.Int("jobs", total),
		slog.Int("concurrency", limit),
	)
	o.sink.Publish(status.Event{
		Kind:    status.KindBatchStarted,
		Level:   status.LevelInfo,
		BatchID: batchID,
		Message: fmt.Sprintf("Starting %d download(s), %d at a time.", total, limit),
		Total:   total,
	})

	go o.run(ctx, batchID, slices.Clone(specs), limit, out)
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, batchID string, specs []model.JobSpec, limit int, out chan<- model.JobResult) {
	jobs := make(chan model.JobSpec)
	total := len(specs)

	var (
		progressMu sync.Mutex
		completed  int
	)
	report := func(res model.JobResult) {
		progressMu.Lock()
		defer progressMu.Unlock()
		completed++
		o.publishResult(batchID, res)
		o.sink.Publish(status.Event{
			Kind:      status.KindProgress,
			Level:     status.LevelInfo,
			BatchID:   batchID,
			Message:   fmt.Sprintf("Downloading... (%d/%d) complete", completed, total),
			Completed: completed,
			Total:     total,
		})
		out <- res
	}

	var g errgroup.Group
	for range min(limit, total) {
		g.Go(func() error {
			for spec := range jobs {
				report(o.execute(ctx, spec))
			}
			return nil
		})
	}
	for _, spec := range specs {
		jobs <- spec
	}
	close(jobs)
	_ = g.Wait()

	o.mu.Lock()
	o.state = StateCompleted
	o.mu.Unlock()

	o.logger.Info("batch completed", slog.String("batch_id", batchID), slog.Int("jobs", total))
	o.sink.Publish(status.Event{
		Kind:      status.KindBatchCompleted,
		Level:     status.LevelSuccess,
		BatchID:   batchID,
		Message:   "All downloads completed!",
		Completed: total,
		Total:     total,
	})
	close(out)
}

// execute runs one job. It never returns without a classified result.
func (o *Orchestrator) execute(ctx context.Context, spec model.JobSpec) model.JobResult {
	res := model.JobResult{
		Item:           spec.Item,
		Position:       spec.Position,
		OutputDir:      spec.OutputDir,
		OutputTemplate: spec.OutputTemplate,
	}
	if ctx.Err() != nil {
		res.ErrorKind = model.JobErrorProcessFailure
		res.Diagnostic = "cancelled"
		res.ExitCode = -1
		return res
	}

	pr, err := o.runner.Run(ctx, o.binary, spec.Args, o.timeout)
	res.ExitCode = pr.ExitCode
	res.Elapsed = pr.Elapsed
	res.TimedOut = pr.TimedOut
	res.ErrorKind, res.Diagnostic = Classify(pr, err)
	res.Success = res.ErrorKind == model.JobErrorNone

	if !res.Success {
		o.logger.Warn("job failed",
			slog.String("url", spec.Item.URL),
			slog.String("kind", res.ErrorKind.String()),
			slog.Int("exit_code", res.ExitCode),
			slog.String("stderr", string(pr.Stderr)),
		)
	}
	return res
}

func (o *Orchestrator) publishResult(batchID string, res model.JobResult) {
	ev := status.Event{
		Kind:    status.KindJobResult,
		BatchID: batchID,
		Item:    res.Item,
		Result:  &res,
	}
	title := truncate(res.Item.Title, 30)
	switch {
	case res.Success:
		ev.Level = status.LevelSuccess
		ev.Message = fmt.Sprintf("Finished %s", title)
	case res.ErrorKind == model.JobErrorMissingDependency:
		ev.Level = status.LevelError
		ev.Message = "Error: FFmpeg not found. It's required for merging and conversion."
	default:
		ev.Level = status.LevelError
		ev.Message = fmt.Sprintf("Download failed for %s: %s", title, res.Diagnostic)
	}
	o.sink.Publish(ev)
}

// Run starts a batch and blocks until every result is in.
func (o *Orchestrator) Run(ctx context.Context, specs []model.JobSpec, limit int) (BatchReport, error) {
	start := time.Now()
	results, err := o.Start(ctx, specs, limit)
	if err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{ID: o.BatchID()}
	dirs := make(map[string]struct{})
	for res := range results {
		report.Results = append(report.Results, res)
		if res.Success {
			report.Succeeded++
			dirs[res.OutputDir] = struct{}{}
		} else {
			report.Failed++
		}
	}
	for dir := range dirs {
		report.OutputDirs = append(report.OutputDirs, dir)
	}
	slices.Sort(report.OutputDirs)
	report.Elapsed = time.Since(start)
	return report, nil
}

// RunQueue snapshots store, builds one job per item and runs the batch.
// When it completes the batch's items are removed from store; items queued
// while the batch ran stay queued.
func (o *Orchestrator) RunQueue(ctx context.Context, store *queue.Store, cfg model.JobConfig) (BatchReport, error) {
	items := store.Snapshot()
	specs := jobspec.BuildAll(items, cfg)
	report, err := o.Run(ctx, specs, cfg.Concurrency)
	if err != nil {
		return report, err
	}
	for _, item := range items {
		store.Remove(item.URL)
	}
	return report, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
