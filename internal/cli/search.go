package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rmcat/internal/catalog"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Page  int
	Pages int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <entity> <name>",
		Short: "Search characters, locations or episodes by name",
		Long: `Search characters, locations or episodes whose name contains <name>.

Matching is case-insensitive and done by the API; search results are never
cached, so search needs a connection.

Example:
  rmcat search characters rick
  rmcat search locations "citadel of ricks"`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], strings.Join(args[1:], " "), cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "first page of matches to show")
	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "number of consecutive pages to show")

	return cmd
}

func runSearch(opts *SearchOptions, name, query string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	entity, err := catalog.ParseEntity(name)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	if opts.Pages < 1 {
		return out.Fail(ExitCommandError, ErrCodeUsage, "--pages must be at least 1", nil)
	}
	// A blank query would turn the list model back into a plain listing.
	query = catalog.NormalizeQuery(query)
	if query == "" {
		return out.CatalogError(catalog.InvalidSearchQuery(entity, query), false)
	}

	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	var result any
	switch entity {
	case catalog.EntityCharacter:
		result, err = loadList(ctx, a.service.Characters, query, opts.Page, opts.Pages)
	case catalog.EntityLocation:
		result, err = loadList(ctx, a.service.Locations, query, opts.Page, opts.Pages)
	case catalog.EntityEpisode:
		result, err = loadList(ctx, a.service.Episodes, query, opts.Page, opts.Pages)
	}
	if err != nil {
		return out.CatalogError(err, false)
	}
	return out.Success(result)
}
