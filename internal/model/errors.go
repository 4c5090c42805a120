package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers. Callers classify failures with errors.Is against these.
var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidURL      = fmt.Errorf("%w: invalid url", ErrValidation)
	ErrDuplicate       = fmt.Errorf("%w: duplicate url", ErrValidation)
	ErrResolution      = errors.New("resolution error")
	ErrDetailFetch     = errors.New("detail fetch error")
	ErrThumbnail       = errors.New("thumbnail error")
	ErrConfigIO        = errors.New("config io error")
	ErrFatalDependency = errors.New("required dependency missing")
	ErrBatchRunning    = errors.New("a batch is already running")
	ErrEmptyBatch      = errors.New("batch has no jobs")
)

// Wrap builds an error tagged with marker that keeps op and message as
// context and, when err is non-nil, also wraps err.
func Wrap(marker error, op, message string, err error) error {
	detail := buildDetail(op, message)
	if marker == nil {
		marker = ErrResolution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(op, message string) string {
	parts := make([]string, 0, 2)
	if op = strings.TrimSpace(op); op != "" {
		parts = append(parts, op)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}

// ResolutionError reports that the resolver produced no usable records.
type ResolutionError struct {
	URL      string
	ExitCode int
	// LastLine is the last diagnostic line the resolver printed.
	LastLine string
}

func (e *ResolutionError) Error() string {
	msg := e.LastLine
	if msg == "" {
		msg = "no usable records"
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("resolve %s: exit %d: %s", e.URL, e.ExitCode, msg)
	}
	return fmt.Sprintf("resolve %s: %s", e.URL, msg)
}

// Unwrap lets errors.Is match ErrResolution.
func (e *ResolutionError) Unwrap() error {
	return ErrResolution
}
