// Package process runs the external resolver and executor binaries.
//
// Run captures a child's output and exit status; Stream additionally hands
// every stdout line to a callback as soon as it is read, which is how flat
// playlist listings populate the queue incrementally. A non-zero exit is
// reported through Result, not as an error: errors mean the child could not
// be started at all.
//
// On unix the child is placed in its own process group and the whole group
// is killed when the timeout expires or the context is cancelled, so
// post-processors spawned by the executor do not outlive it.
package process
