package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type exportOutput struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole collection as a JSON array",
		Long:  "Write the whole collection as a JSON array, to stdout or to --out. The document can be fed back to import.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				data, err := s.app.Quotes.Export(ctx)
				if err != nil {
					return err
				}

				if out == "" {
					_, err = s.out.Write(append(data, '\n'))

					return err
				}

				if err := os.WriteFile(out, data, 0o600); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}

				if s.json() {
					return s.writeJSON(exportOutput{Path: out, Bytes: len(data)})
				}

				_, err = fmt.Fprintf(s.out, "Exported %d bytes to %s\n", len(data), out)

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write instead of stdout")

	return cmd
}

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Append quotes from a JSON array",
		Long: `Append quotes from a JSON array previously written by export. Use "-" to
read stdin. Quotes whose id is already present are skipped. An invalid
document leaves the collection unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				result, err := s.app.Quotes.Import(ctx, data)
				if err != nil {
					return err
				}

				if s.json() {
					return s.writeJSON(result)
				}

				return nil
			})
		},
	}
}

func readSource(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	return data, nil
}
