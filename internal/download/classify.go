package download

import (
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/process"
)

// missingMarkers are lower-case substrings; a diagnostic matches a marker
// when it contains every part.
var missingMarkers = [][]string{
	{"ffmpeg", "not found"},
	{"ffprobe", "not found"},
	{"ffmpeg is not installed"},
	{"codec", "not found"},
	{"unknown encoder"},
}

// MissingDependency reports whether diagnostic output names an absent
// codec or post-processing tool.
func MissingDependency(diagnostic string) bool {
	lower := strings.ToLower(diagnostic)
	for _, parts := range missingMarkers {
		matched := true
		for _, part := range parts {
			if !strings.Contains(lower, part) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// Classify maps a process outcome to a job error kind and diagnostic line.
// runErr is the error returned when the process could not be run at all.
func Classify(res process.Result, runErr error) (model.JobErrorKind, string) {
	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
			return model.JobErrorMissingDependency, runErr.Error()
		}
		return model.JobErrorUnknown, runErr.Error()
	}

	last := res.LastLine()
	switch {
	case res.TimedOut:
		return model.JobErrorProcessFailure, "timeout: " + orDefault(last, "executor did not finish")
	case res.Cancelled:
		return model.JobErrorProcessFailure, "cancelled"
	case res.ExitCode == 0:
		return model.JobErrorNone, ""
	}

	if MissingDependency(string(res.Stderr)) || MissingDependency(string(res.Stdout)) {
		return model.JobErrorMissingDependency, orDefault(last, "required codec or tool not found")
	}
	if res.ExitCode < 0 {
		return model.JobErrorUnknown, orDefault(last, "executor reported no exit status")
	}
	return model.JobErrorProcessFailure, orDefault(last, "executor exited with a non-zero status")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
