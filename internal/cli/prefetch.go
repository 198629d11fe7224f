package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/rmcat/internal/api"
	"github.com/roach88/rmcat/internal/browse"
	"github.com/roach88/rmcat/internal/catalog"
	"github.com/roach88/rmcat/internal/store"
)

// PrefetchOptions holds flags for the prefetch command.
type PrefetchOptions struct {
	*RootOptions
	Pages       int
	Concurrency int
}

// NewPrefetchCommand creates the prefetch command.
func NewPrefetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrefetchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prefetch [entity...]",
		Short: "Warm the cache for offline use",
		Long: `Load the first pages of every entity (or only the named ones) into the
local cache so that list and get keep working without a connection.

Example:
  rmcat prefetch
  rmcat prefetch episodes --pages 3 --concurrency 2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefetch(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "pages to load per entity")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 3, "maximum concurrent page loads")

	return cmd
}

// PrefetchFailure is one page that could not be loaded.
type PrefetchFailure struct {
	Entity  catalog.Entity `json:"entity"`
	Page    int            `json:"page"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
}

// PrefetchSkip is a page past the end of an entity's catalog.
type PrefetchSkip struct {
	Entity catalog.Entity `json:"entity"`
	Page   int            `json:"page"`
}

// PrefetchResult summarizes a prefetch run.
type PrefetchResult struct {
	Pages   int                `json:"pages"`
	Tables  []store.TableStats `json:"tables"`
	Failed  []PrefetchFailure  `json:"failed,omitempty"`
	Skipped []PrefetchSkip     `json:"skipped,omitempty"`
}

// RenderText writes the cache contents after the run and any failed pages.
func (r PrefetchResult) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Prefetched %s per entity\n", english.Plural(r.Pages, "page", ""))

	rows := make([][]string, 0, len(r.Tables))
	for _, t := range r.Tables {
		rows = append(rows, []string{string(t.Kind), strconv.Itoa(t.Rows), strconv.Itoa(t.Pages)})
	}
	if err := writeTable(w, []string{"TABLE", "ROWS", "PAGES"}, rows); err != nil {
		return err
	}

	for _, s := range r.Skipped {
		fmt.Fprintf(w, "Skipped: %s page %d is past the last page\n", s.Entity.Plural(), s.Page)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "Failed: %s page %d: %s\n", f.Entity.Plural(), f.Page, f.Message)
	}
	return nil
}

func runPrefetch(opts *PrefetchOptions, names []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if opts.Pages < 1 {
		return out.Fail(ExitCommandError, ErrCodeUsage, "--pages must be at least 1", nil)
	}
	if opts.Concurrency < 1 {
		return out.Fail(ExitCommandError, ErrCodeUsage, "--concurrency must be at least 1", nil)
	}

	entities := catalog.Entities
	if len(names) > 0 {
		entities = nil
		for _, name := range names {
			e, err := catalog.ParseEntity(name)
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
			}
			entities = append(entities, e)
		}
	}

	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Refresh bypasses the cache so a failed page is always reported.
	loaders := map[catalog.Entity]func(context.Context, int) error{
		catalog.EntityCharacter: a.characters.Refresh,
		catalog.EntityLocation:  a.locations.Refresh,
		catalog.EntityEpisode:   a.episodes.Refresh,
	}

	ctx := commandContext(cmd)
	var (
		g       errgroup.Group
		mu      sync.Mutex
		failed  []PrefetchFailure
		skipped []PrefetchSkip
	)
	g.SetLimit(opts.Concurrency)
	for _, entity := range entities {
		load := loaders[entity]
		for page := 1; page <= opts.Pages; page++ {
			entity, page := entity, page
			g.Go(func() error {
				out.VerboseLog("Loading %s page %d", entity.Plural(), page)
				err := load(ctx, page)
				switch {
				case err == nil:
				case page > 1 && api.IsNotFound(err):
					mu.Lock()
					skipped = append(skipped, PrefetchSkip{Entity: entity, Page: page})
					mu.Unlock()
				default:
					a.logger.Warn("prefetch failed",
						zap.String("entity", string(entity)),
						zap.Int("page", page),
						zap.Error(err),
					)
					mu.Lock()
					failed = append(failed, PrefetchFailure{
						Entity:  entity,
						Page:    page,
						Code:    qualifiedCode(err),
						Message: browse.Message(err),
					})
					mu.Unlock()
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	sort.Slice(failed, func(i, j int) bool {
		return pageLess(failed[i].Entity, failed[i].Page, failed[j].Entity, failed[j].Page)
	})
	sort.Slice(skipped, func(i, j int) bool {
		return pageLess(skipped[i].Entity, skipped[i].Page, skipped[j].Entity, skipped[j].Page)
	})

	tables, err := a.store.Stats(ctx)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "failed to read cache stats", err)
	}

	if err := out.Success(PrefetchResult{
		Pages:   opts.Pages,
		Tables:  tables,
		Failed:  failed,
		Skipped: skipped,
	}); err != nil {
		return err
	}
	if len(failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s could not be loaded", english.Plural(len(failed), "page", "")))
	}
	return nil
}

func pageLess(a catalog.Entity, pa int, b catalog.Entity, pb int) bool {
	if a != b {
		return entityIndex(a) < entityIndex(b)
	}
	return pa < pb
}

func entityIndex(e catalog.Entity) int {
	for i, x := range catalog.Entities {
		if x == e {
			return i
		}
	}
	return len(catalog.Entities)
}

func qualifiedCode(err error) string {
	if ce, ok := catalog.AsError(err); ok {
		return ce.QualifiedCode()
	}
	return ErrCodeGeneric
}
