package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/model"
)

// Requirement defines an external dependency the downloader relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

var lookPath = exec.LookPath

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := lookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Requirements lists the binaries the given settings need. The resolver and
// executor collapse into one entry when they name the same command.
func Requirements(s *config.Settings) []Requirement {
	reqs := []Requirement{{
		Name:        "resolver",
		Command:     s.Resolver(),
		Description: "Lists playlists and resolves item metadata",
	}}
	if s.Executor() != s.Resolver() {
		reqs = append(reqs, Requirement{
			Name:        "executor",
			Command:     s.Executor(),
			Description: "Fetches and converts media",
		})
	} else {
		reqs[0].Name = "resolver/executor"
		reqs[0].Description = "Resolves metadata and fetches media"
	}
	reqs = append(reqs, Requirement{
		Name:        "ffmpeg",
		Command:     "ffmpeg",
		Description: "Merges streams, converts audio and embeds metadata",
		Optional:    true,
	})
	return reqs
}

// Capability is the result of the startup dependency check.
type Capability struct {
	Statuses []Status
}

// Check looks up every binary the settings need.
func Check(s *config.Settings) Capability {
	return Capability{Statuses: CheckBinaries(Requirements(s))}
}

// Ready reports whether every required binary was found.
func (c Capability) Ready() bool {
	return len(c.Missing()) == 0
}

// Missing returns the required dependencies that were not found.
func (c Capability) Missing() []Status {
	var out []Status
	for _, st := range c.Statuses {
		if !st.Available && !st.Optional {
			out = append(out, st)
		}
	}
	return out
}

// Has reports whether the named dependency is available.
func (c Capability) Has(name string) bool {
	for _, st := range c.Statuses {
		if st.Name == name {
			return st.Available
		}
	}
	return false
}

// Err returns an error wrapping model.ErrFatalDependency when a required
// binary is missing, and nil otherwise.
func (c Capability) Err() error {
	missing := c.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, st := range missing {
		names[i] = st.Command
	}
	return model.Wrap(model.ErrFatalDependency, "startup check", strings.Join(names, ", ")+" not found on PATH", nil)
}
