package deps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/handiism/skylark-downloader/internal/process"
)

const updateTimeout = 5 * time.Minute

// UpdateResult describes the outcome of a self-update.
type UpdateResult struct {
	Updated bool
	Output  string
}

// Updater runs the executor's self-update.
type Updater struct {
	Binary string
	Runner process.Runner
}

// Update runs "<binary> -U". The executor prints "Updating to" when it
// installs a newer version.
func (u *Updater) Update(ctx context.Context) (UpdateResult, error) {
	res, err := u.Runner.Run(ctx, u.Binary, []string{"-U"}, updateTimeout)
	if err != nil {
		return UpdateResult{}, err
	}
	output := strings.TrimSpace(string(res.Stdout))
	if !res.Success() {
		return UpdateResult{Output: output}, fmt.Errorf("%s -U exited with code %d: %s", u.Binary, res.ExitCode, res.LastLine())
	}
	return UpdateResult{
		Updated: strings.Contains(output, "Updating to"),
		Output:  output,
	}, nil
}
