// Package cli is the command line surface of the quote keeper. Every command
// loads the same configuration and storage the HTTP service uses, so both can
// share one collection.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{FormatText, FormatJSON}

// RootOptions holds the global flags.
type RootOptions struct {
	Profile string
	DB      string
	Remote  string
	Format  string
	Verbose bool
}

// NewRootCommand creates the quotes command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "quotes",
		Short:   "Keep a personal collection of quotes",
		Long:    "Show, filter, add and remove quotes, move them in and out as JSON, and sync with the remote list.",
		Version: version,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "config profile (configs/<profile>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path, overrides storage.path")
	cmd.PersistentFlags().StringVar(&opts.Remote, "remote", "", "remote list base URL, overrides services.quote.base_url")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(
		newRandomCommand(opts),
		newListCommand(opts),
		newCategoriesCommand(opts),
		newSelectCommand(opts),
		newAddCommand(opts),
		newRemoveCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newSyncCommand(opts),
		newWatchCommand(opts),
	)

	return cmd
}
