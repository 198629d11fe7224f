package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rmcat/internal/browse"
	"github.com/roach88/rmcat/internal/catalog"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Show a single character, location or episode",
		Long: `Show a single character, location or episode by id.

Example:
  rmcat get character 1
  rmcat get episode 28 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runGet(opts *RootOptions, name, rawID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	entity, err := catalog.ParseEntity(name)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid %s id %q", entity, rawID), nil)
	}

	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	var result any
	switch entity {
	case catalog.EntityCharacter:
		result, err = loadDetail(ctx, a.service.Characters, id)
	case catalog.EntityLocation:
		result, err = loadDetail(ctx, a.service.Locations, id)
	case catalog.EntityEpisode:
		result, err = loadDetail(ctx, a.service.Episodes, id)
	}
	if err != nil {
		return out.CatalogError(err, true)
	}
	return out.Success(result)
}

func loadDetail[T any](ctx context.Context, c *catalog.Catalog[T], id int) (DetailResult[T], error) {
	d := browse.NewDetail[T](c, id)
	if err := d.Load(ctx); err != nil {
		return DetailResult[T]{}, err
	}
	st := d.State()
	return DetailResult[T]{Entity: c.Entity(), ID: id, Source: st.Source, Item: st.Item}, nil
}
