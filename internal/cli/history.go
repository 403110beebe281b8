package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/projdoc/internal/ir"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryEntry is one recorded revision.
type HistoryEntry struct {
	Seq         int64    `json:"seq"`
	ID          string   `json:"id"`
	Path        string   `json:"path"`
	Version     int64    `json:"version"`
	ContentHash string   `json:"content_hash"`
	Engines     []string `json:"engines,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "List recorded revisions",
		Long: `List the revisions recorded by apply --db and eval --db, oldest first.
With a file argument only that file's revisions are listed.

Examples:
  projdoc history --db history.db
  projdoc history --db history.db app.csproj --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runHistory(opts, cmd, path)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, path string) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("bad path: %s", path), err)
		}
		path = abs
	}

	st, err := opts.openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	revs, err := st.ListRevisions(ctx, path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to list revisions", err)
	}

	entries := make([]HistoryEntry, 0, len(revs))
	for _, rev := range revs {
		entry := historyEntry(rev)
		for _, kind := range []string{"legacy", "full"} {
			_, found, err := st.ReadEvaluation(ctx, rev.ID, kind)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, "failed to read evaluation", err)
			}
			if found {
				entry.Engines = append(entry.Engines, kind)
			}
		}
		entries = append(entries, entry)
	}

	if f.JSON() {
		return f.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No revisions recorded.")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%4d  %s  v%d  %s", e.Seq, shortID(e.ID), e.Version, e.Path)
		if len(e.Engines) > 0 {
			line += fmt.Sprintf("  evaluated: %v", e.Engines)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func historyEntry(rev ir.Revision) HistoryEntry {
	return HistoryEntry{
		Seq:         rev.Seq,
		ID:          rev.ID,
		Path:        rev.Path,
		Version:     rev.Version,
		ContentHash: rev.ContentHash,
	}
}
