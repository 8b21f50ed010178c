package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-keeper/internal/app"
)

type syncOutput struct {
	ID         uint64      `json:"id"`
	Trigger    app.Trigger `json:"trigger"`
	Outcome    string      `json:"outcome"`
	Fetched    int         `json:"fetched"`
	Added      int         `json:"added"`
	Updated    int         `json:"updated"`
	DurationMs int64       `json:"durationMs"`
	Error      string      `json:"error,omitempty"`
}

func newSyncOutput(r app.CycleReport) syncOutput {
	out := syncOutput{
		ID:         r.ID,
		Trigger:    r.Trigger,
		Outcome:    r.Outcome(),
		Fetched:    r.Fetched,
		Added:      r.Added,
		Updated:    r.Conflicts,
		DurationMs: r.Duration().Milliseconds(),
	}

	if r.Err != nil {
		out.Error = r.Err.Error()
	}

	return out
}

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge one page of the remote list into the collection",
		Long:  "Fetch one page of the remote list and merge it. Remote records replace local ones with the same id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				report, err := s.app.Sync.Sync(ctx, app.TriggerManual)

				if s.json() {
					if report.ID != 0 {
						if werr := s.writeJSON(newSyncOutput(report)); werr != nil {
							return werr
						}
					}

					return err
				}

				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(s.out, "Sync #%d %s: fetched %d, added %d, updated %d in %s\n",
					report.ID, report.Outcome(), report.Fetched, report.Added, report.Conflicts,
					report.Duration().Round(time.Millisecond))

				return err
			})
		},
	}
}

func newWatchCommand(opts *RootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync on a timer and redraw after every change",
		Long:  "Draw the categories, the list and a random quote, then sync on a timer and redraw after every change until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			extra := map[string]any{"sync.run_on_startup": true}
			if interval > 0 {
				extra["sync.interval"] = interval.String()
			}

			s, err := opts.open(cmd, true, extra)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return errors.Join(s.app.Sync.Run(ctx), s.close())
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "sync interval, overrides sync.interval")

	return cmd
}
