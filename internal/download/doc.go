// Package download runs batches of fetch jobs.
//
// # Orchestrator
//
// The Orchestrator executes JobSpecs through the external fetch executor
// with a fixed-width worker pool:
//
//  1. Start moves the orchestrator from Idle (or Completed) to Running;
//     a second Start while Running fails with model.ErrBatchRunning
//  2. N workers each pull the next unclaimed JobSpec and run the executor
//  3. Every JobSpec yields exactly one JobResult, in completion order
//  4. A progress event (completed, total) follows every result
//  5. After the last result the orchestrator is Completed
//
// There is no partial cancellation. Cancelling the context only tears down
// running processes on shutdown; every remaining job still reports a
// result, classified as a process failure.
//
// # Basic Usage
//
//	orch := download.NewOrchestrator(process.NewExec(logger),
//	    download.WithSink(reporter),
//	)
//
//	report, err := orch.RunQueue(ctx, store, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d ok, %d failed\n", report.Succeeded, report.Failed)
//
// # Outcome Classification
//
// A non-zero exit whose diagnostic names a missing codec or ffmpeg is a
// missing dependency; any other non-zero exit, timeout or cancellation is a
// process failure; a run without an exit status is unknown.
//
// # Post-processing
//
// Finisher tags audio outputs and writes playlist files once a batch is
// complete. It never turns a successful job into a failure.
package download
