package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/roach88/rmcat/internal/catalog"
	"github.com/roach88/rmcat/internal/store"
)

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local cache",
	}
	cmd.AddCommand(newCacheStatsCommand(rootOpts))
	cmd.AddCommand(newCacheClearCommand(rootOpts))
	return cmd
}

func newCacheStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show what the cache holds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(rootOpts, cmd)
		},
	}
}

func newCacheClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [entity]",
		Short: "Delete cached items",
		Long: `Delete every cached item, or only those of one entity.

Example:
  rmcat cache clear
  rmcat cache clear episodes`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(rootOpts, args, cmd)
		},
	}
}

// CacheStats describes the cache database.
type CacheStats struct {
	Path      string             `json:"path"`
	SizeBytes int64              `json:"size_bytes"`
	Tables    []store.TableStats `json:"tables"`

	now time.Time
}

// RenderText writes the database location and one line per table.
func (s CacheStats) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Cache: %s (%s)\n", s.Path, humanize.Bytes(uint64(s.SizeBytes)))

	rows := make([][]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		fetched := "never"
		if !t.LastFetched.IsZero() {
			fetched = humanize.RelTime(t.LastFetched, s.now, "ago", "from now")
		}
		rows = append(rows, []string{
			string(t.Kind),
			humanize.Comma(int64(t.Rows)),
			humanize.Comma(int64(t.Pages)),
			fetched,
		})
	}
	return writeTable(w, []string{"TABLE", "ROWS", "PAGES", "LAST FETCHED"}, rows)
}

// ClearResult lists the tables that were emptied.
type ClearResult struct {
	Cleared []store.Kind `json:"cleared"`
}

// RenderText writes a one-line summary.
func (r ClearResult) RenderText(w io.Writer) error {
	names := make([]string, len(r.Cleared))
	for i, k := range r.Cleared {
		names[i] = string(k)
	}
	_, err := fmt.Fprintf(w, "Cleared cached %s\n", english.WordSeries(names, "and"))
	return err
}

// openCache opens only the configured database; cache commands never need the
// API.
func openCache(opts *RootOptions, out *OutputFormatter) (*store.Store, string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, "", out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	st, err := openStore(cfg.Cache.Path)
	if err != nil {
		return nil, "", out.Fail(ExitCommandError, ErrCodeStore, "failed to open cache database", err)
	}
	return st, cfg.Cache.Path, nil
}

func runCacheStats(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	st, path, err := openCache(opts, out)
	if err != nil {
		return err
	}
	defer st.Close()

	tables, err := st.Stats(commandContext(cmd))
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "failed to read cache stats", err)
	}

	stats := CacheStats{Path: path, SizeBytes: cacheSize(path), Tables: tables, now: opts.now()}
	return out.Success(stats)
}

// cacheSize sums the database file and its write-ahead log. Missing files
// count as zero.
func cacheSize(path string) int64 {
	var size int64
	for _, p := range []string{path, path + "-wal"} {
		if fi, err := os.Stat(p); err == nil {
			size += fi.Size()
		}
	}
	return size
}

func runCacheClear(opts *RootOptions, args []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	kinds := store.Kinds
	if len(args) == 1 {
		entity, err := catalog.ParseEntity(args[0])
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
		}
		kinds = []store.Kind{store.Kind(entity.Plural())}
	}

	st, _, err := openCache(opts, out)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if len(kinds) == 1 {
		err = st.Clear(ctx, kinds[0])
	} else {
		err = st.ClearAll(ctx)
	}
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStore, "failed to clear cache", err)
	}

	out.VerboseLog("Cleared %d table(s)", len(kinds))
	return out.Success(ClearResult{Cleared: kinds})
}
