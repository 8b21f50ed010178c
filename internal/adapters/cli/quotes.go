package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
)

type categoriesOutput struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

type removedOutput struct {
	Removed string `json:"removed"`
}

func newRandomCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Show a random quote from the whole collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				q := s.app.Quotes.ShowRandom(ctx)
				if s.json() {
					return s.writeJSON(q)
				}

				s.term.ShowRandom(ctx, q)

				return nil
			})
		},
	}
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the quotes in a category",
		Long:  "List the quotes in a category. Without --category the selected category is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				quotes := s.app.Quotes.List(ctx, category)
				if s.json() {
					if quotes == nil {
						quotes = []domain.Quote{}
					}

					return s.writeJSON(quotes)
				}

				s.term.RenderList(ctx, quotes)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", `category to list, "all" for everything`)

	return cmd
}

func newCategoriesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the categories and the selected one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return printCategories(ctx, s)
			})
		},
	}
}

func newSelectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <category>",
		Short: "Select the category used by list and remembered across runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.app.Quotes.SelectCategory(ctx, args[0]); err != nil {
					return err
				}

				return printCategories(ctx, s)
			})
		},
	}
}

func printCategories(ctx context.Context, s *session) error {
	categories, selected := s.app.Quotes.Categories()
	if s.json() {
		return s.writeJSON(categoriesOutput{Categories: categories, Selected: selected})
	}

	s.term.RenderCategories(ctx, categories, selected)

	return nil
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var text, category, author string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote",
		Long:  "Add a quote. A blank author is stored as \"Unknown\". When pushing is enabled the quote is also sent to the remote list.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				q, err := s.app.Quotes.Add(ctx, text, category, author)
				if err != nil {
					return err
				}

				if s.json() {
					return s.writeJSON(q)
				}

				s.term.RenderList(ctx, []domain.Quote{q})

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "quote text (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category (required)")
	cmd.Flags().StringVarP(&author, "author", "a", "", "author")

	return cmd
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a quote by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.app.Quotes.Remove(ctx, args[0]); err != nil {
					return err
				}

				if s.json() {
					return s.writeJSON(removedOutput{Removed: args[0]})
				}

				return nil
			})
		},
	}
}
