package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/render"
	"github.com/jsamuelsen/quote-keeper/internal/bootstrap"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
)

// session is one command's view of the collection.
type session struct {
	app    *bootstrap.App
	term   *render.Terminal
	format string
	out    io.Writer
}

// overrides turns the global flags into config keys.
func (o *RootOptions) overrides() map[string]any {
	m := map[string]any{"log.level": "warn"}

	if o.Verbose {
		m["log.level"] = "debug"
	}

	if o.DB != "" {
		m["storage.driver"] = bootstrap.DriverSQLite
		m["storage.path"] = o.DB
	}

	if o.Remote != "" {
		m["services.quote.base_url"] = o.Remote
	}

	return m
}

// loadConfig reads the profile with the flag overrides applied on top.
func (o *RootOptions) loadConfig(extra map[string]any) (*config.Config, error) {
	overrides := o.overrides()
	for k, v := range extra {
		overrides[k] = v
	}

	cfg, err := config.LoadWithOverrides(o.Profile, overrides)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// open assembles the application for cmd. Notifications always go to stderr.
// With live set the terminal also redraws on every collection change.
func (o *RootOptions) open(cmd *cobra.Command, live bool, extra map[string]any) (*session, error) {
	cfg, err := o.loadConfig(extra)
	if err != nil {
		return nil, err
	}

	term := render.NewTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr())

	opts := bootstrap.Options{Notifier: term}
	if live {
		opts.Renderer = term
	}

	a, err := bootstrap.New(cmd.Context(), cfg, opts)
	if err != nil {
		return nil, err
	}

	return &session{app: a, term: term, format: o.Format, out: cmd.OutOrStdout()}, nil
}

// run opens a session, calls fn and closes the session, keeping the first error.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := o.open(cmd, false, nil)
	if err != nil {
		return err
	}

	err = fn(cmd.Context(), s)

	return errors.Join(err, s.close())
}

func (s *session) close() error {
	return s.app.Close(context.Background())
}

func (s *session) json() bool {
	return s.format == FormatJSON
}

func (s *session) writeJSON(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
