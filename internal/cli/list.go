package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/rmcat/internal/browse"
	"github.com/roach88/rmcat/internal/catalog"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Page  int
	Pages int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List characters, locations or episodes",
		Long: `List one or more pages of characters, locations or episodes.

A page already in the cache is shown immediately and refreshed in the
background. When the API cannot be reached, every cached item is shown instead.

Example:
  rmcat list characters
  rmcat list episodes --page 2
  rmcat list locations --pages 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "first page to show")
	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "number of consecutive pages to show")

	return cmd
}

func runList(opts *ListOptions, name string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	entity, err := catalog.ParseEntity(name)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	if opts.Pages < 1 {
		return out.Fail(ExitCommandError, ErrCodeUsage, "--pages must be at least 1", nil)
	}

	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out.VerboseLog("Listing %s from %s (page %d, %d page(s))", entity.Plural(), a.client.BaseURL(), opts.Page, opts.Pages)

	ctx := commandContext(cmd)
	var result any
	switch entity {
	case catalog.EntityCharacter:
		result, err = loadList(ctx, a.service.Characters, "", opts.Page, opts.Pages)
	case catalog.EntityLocation:
		result, err = loadList(ctx, a.service.Locations, "", opts.Page, opts.Pages)
	case catalog.EntityEpisode:
		result, err = loadList(ctx, a.service.Episodes, "", opts.Page, opts.Pages)
	}
	if err != nil {
		return out.CatalogError(err, false)
	}
	return out.Success(result)
}

// loadList drives a list model from page through up to pages pages. It stops
// early once a page adds nothing new or a later search page has no matches.
func loadList[T browse.Item](ctx context.Context, c *catalog.Catalog[T], query string, page, pages int) (ListResult[T], error) {
	l := browse.NewList[T](c)

	var err error
	if query == "" {
		err = l.Goto(ctx, page)
	} else {
		err = l.SearchFrom(ctx, query, page)
	}
	if err != nil {
		return ListResult[T]{}, err
	}

	last := page
	for i := 1; i < pages; i++ {
		before := len(l.State().Items)
		if err := l.LoadNextPage(ctx); err != nil {
			if catalog.IsNotFound(err) {
				break
			}
			return ListResult[T]{}, err
		}
		if len(l.State().Items) == before {
			break
		}
		last++
	}

	st := l.State()
	return ListResult[T]{
		Entity:    c.Entity(),
		Query:     st.Query,
		FirstPage: page,
		LastPage:  last,
		Source:    st.Source,
		Count:     len(st.Items),
		Items:     st.Items,
	}, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
