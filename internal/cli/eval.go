package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/projdoc/internal/ir"
	"github.com/roach88/projdoc/internal/project"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Engine   string
	All      bool
	Database string
}

// EvalResult is the evaluated view printed by eval.
type EvalResult struct {
	Path       string        `json:"path"`
	Engine     string        `json:"engine"`
	Properties []ir.Property `json:"properties"`
	Items      []ir.Item     `json:"items"`
	Targets    []ir.Target   `json:"targets"`
	Revision   string        `json:"revision,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Print the evaluated properties, items and targets of a project",
		Long: `Evaluate a project and print its properties, items and targets.

The legacy engine reads the file on its own; the full engine also follows
its imports. Items and targets whose condition is false are left out
unless --all is given.

Exit codes:
  0 - Evaluation succeeded
  2 - Command error (file not found, bad condition, import cycle, etc.)

Examples:
  projdoc eval app.csproj
  projdoc eval app.csproj --engine legacy --all
  projdoc eval app.csproj --db history.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Engine, "engine", string(project.FullEngine), "evaluation engine (legacy|full)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include items and targets whose condition is false")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the project and its evaluation in this SQLite database")

	return cmd
}

func runEval(opts *EvalOptions, cmd *cobra.Command, path string) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	kind, err := parseEngineKind(opts.Engine)
	if err != nil {
		return err
	}
	d, err := opts.openDocument(f, path, kind)
	if err != nil {
		return err
	}
	defer d.Close()

	ev, err := d.Evaluate(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeEvaluation, fmt.Sprintf("failed to evaluate %s", path), err)
	}

	result := EvalResult{
		Path:       path,
		Engine:     string(kind),
		Properties: ev.Properties(),
		Items:      ev.Items(),
		Targets:    ev.Targets(),
	}
	if opts.All {
		result.Items = ev.AllItems()
		result.Targets = ev.AllTargets()
	}

	if opts.Database != "" {
		id, err := opts.recordEvaluation(ctx, f, opts.Database, d, ev.Snapshot())
		if err != nil {
			return err
		}
		result.Revision = id
	}

	if f.JSON() {
		return f.Success(result)
	}
	printEval(cmd, result)
	return nil
}

// recordEvaluation stores the current text of d as a revision together with
// its evaluated view and returns the revision id.
func (o *RootOptions) recordEvaluation(ctx context.Context, f *OutputFormatter, dbPath string, d *project.Document, snap ir.Snapshot) (string, error) {
	st, err := o.openStore(f, dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	rev, err := ir.NewRevision(d.Path(), d.Version(), []byte(d.String()))
	if err != nil {
		return "", f.Fail(ExitCommandError, ErrCodeStore, "failed to build revision", err)
	}
	if rev, err = st.WriteRevision(ctx, rev); err != nil {
		return "", f.Fail(ExitCommandError, ErrCodeStore, "failed to record revision", err)
	}
	rec, err := ir.NewEvaluationRecord(rev.ID, string(d.EngineKind()), snap)
	if err != nil {
		return "", f.Fail(ExitCommandError, ErrCodeStore, "failed to build evaluation record", err)
	}
	if err := st.WriteEvaluation(ctx, rec); err != nil {
		return "", f.Fail(ExitCommandError, ErrCodeStore, "failed to record evaluation", err)
	}
	return rev.ID, nil
}

func printEval(cmd *cobra.Command, r EvalResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "Properties:")
	for _, p := range r.Properties {
		fmt.Fprintf(w, "  %s = %s\n", p.Name, p.Value)
	}

	fmt.Fprintln(w, "Items:")
	for _, it := range r.Items {
		line := fmt.Sprintf("  %s %s", it.Type, it.Include)
		if len(it.Metadata) > 0 {
			var md []string
			for _, k := range slices.Sorted(maps.Keys(it.Metadata)) {
				md = append(md, k+"="+it.Metadata[k])
			}
			line += " [" + strings.Join(md, ", ") + "]"
		}
		if it.Condition != "" {
			line += " if " + it.Condition
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, "Targets:")
	for _, t := range r.Targets {
		line := "  " + t.Name
		if t.DependsOnTargets != "" {
			line += " (depends on " + t.DependsOnTargets + ")"
		}
		if t.Condition != "" {
			line += " if " + t.Condition
		}
		fmt.Fprintln(w, line)
	}

	if r.Revision != "" {
		fmt.Fprintf(w, "recorded revision %s\n", shortID(r.Revision))
	}
}
