package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/skylark-downloader/internal/deps"
	"github.com/handiism/skylark-downloader/internal/process"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that yt-dlp and ffmpeg are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			capability := deps.Check(settings)
			fmt.Fprintln(cmd.OutOrStdout(), renderDeps(capability))
			return capability.Err()
		},
	}
}

func renderDeps(c deps.Capability) string {
	rows := make([][]string, 0, len(c.Statuses))
	for _, st := range c.Statuses {
		state := "found"
		detail := st.Path
		switch {
		case !st.Available && st.Optional:
			state = "missing (optional)"
			detail = st.Detail
		case !st.Available:
			state = "MISSING"
			detail = st.Detail
		}
		rows = append(rows, []string{st.Name, st.Command, state, detail, st.Description})
	}
	return renderTable([]string{"Name", "Command", "Status", "Detail", "Purpose"}, rows, nil)
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the fetch executor to its latest release",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			updater := &deps.Updater{
				Binary: settings.Executor(),
				Runner: process.NewExec(ctx.ensureLogger(settings)),
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updating %s ...\n", updater.Binary)
			res, err := updater.Update(cmd.Context())
			if err != nil {
				return err
			}
			if res.Updated {
				fmt.Fprintf(out, "%s was updated.\n", updater.Binary)
			} else {
				fmt.Fprintf(out, "%s is already up to date.\n", updater.Binary)
			}
			if ctx.verbose() && res.Output != "" {
				fmt.Fprintln(out, res.Output)
			}
			return nil
		},
	}
}
