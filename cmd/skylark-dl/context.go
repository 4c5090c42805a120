package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/status"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	return config.DefaultPath()
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// ensureSettings loads settings once. A malformed file falls back to
// defaults with a warning; invalid values are an error.
func (c *commandContext) ensureSettings(warn io.Writer) (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings, err := config.Load(c.configPath())
		if err != nil {
			if !errors.Is(err, model.ErrConfigIO) {
				c.settingsErr = err
				return
			}
			fmt.Fprintf(warn, "Warning: %v; using defaults\n", err)
		}
		if err := settings.Validate(); err != nil {
			c.settingsErr = fmt.Errorf("invalid settings in %s: %w", c.configPath(), err)
			return
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

// ensureLogger builds the diagnostic logger. Without --verbose only
// warnings reach stderr so status lines stay readable.
func (c *commandContext) ensureLogger(settings *config.Settings) *slog.Logger {
	c.loggerOnce.Do(func() {
		s := *settings
		if !c.verbose() && logging.ParseLevel(s.LogLevel) < slog.LevelWarn {
			s.LogLevel = "warn"
		}
		logger, err := logging.NewFromSettings(&s)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// eventPrinter writes status events as prefixed lines. Verbose events are
// dropped unless verbose is set.
type eventPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	symbols bool
}

func newEventPrinter(out io.Writer, verbose bool) *eventPrinter {
	return &eventPrinter{out: out, verbose: verbose, symbols: isTerminal(out)}
}

func (p *eventPrinter) Print(ev status.Event) {
	switch ev.Kind {
	case status.KindItemAdded, status.KindItemUpdated, status.KindItemRemoved, status.KindQueueCleared:
		return
	}
	if ev.Message == "" || (ev.Level == status.LevelVerbose && !p.verbose) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.prefix(ev.Level)+ev.Message)
}

func (p *eventPrinter) prefix(level status.Level) string {
	if !p.symbols {
		return "[" + level.String() + "] "
	}
	switch level {
	case status.LevelError:
		return "✗ "
	case status.LevelWarning:
		return "! "
	case status.LevelSuccess:
		return "✓ "
	case status.LevelInfo:
		return "› "
	default:
		return "  "
	}
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
