package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/projdoc/internal/harness"
	"github.com/roach88/projdoc/internal/ir"
	"github.com/roach88/projdoc/internal/project"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Write    bool
	Database string
}

// ApplyResult is the outcome of applying a script.
type ApplyResult struct {
	Path     string     `json:"path"`
	Steps    int        `json:"steps"`
	Version  int64      `json:"version"`
	Changed  bool       `json:"changed"`
	Written  bool       `json:"written"`
	Revision string     `json:"revision,omitempty"`
	Diff     []DiffLine `json:"diff,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <file> <script.yaml>",
		Short: "Apply the steps of an edit script to a project",
		Long: `Apply the steps of an edit script to a project file and show the
resulting line diff.

Only the steps of the script are used; its document and expectations are
ignored. Without --write the file is left untouched.

Exit codes:
  0 - All steps applied
  2 - Command error (file not found, bad script, failed step, etc.)

Examples:
  projdoc apply app.csproj add-reference.yaml
  projdoc apply app.csproj add-reference.yaml --write
  projdoc apply app.csproj add-reference.yaml --write --db history.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.Write, "write", false, "save the edited project")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the edited project as a revision in this SQLite database")

	return cmd
}

func runApply(opts *ApplyOptions, cmd *cobra.Command, path, scriptPath string) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	steps, err := harness.LoadSteps(scriptPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, fmt.Sprintf("failed to load script %s", scriptPath), err)
	}

	d, err := opts.openDocument(f, path, project.LegacyEngine)
	if err != nil {
		return err
	}
	defer d.Close()

	before := d.String()
	if err := harness.Apply(d, steps); err != nil {
		return f.Fail(ExitCommandError, ErrCodeScript, "failed to apply script", err)
	}
	after := d.String()

	result := ApplyResult{
		Path:    path,
		Steps:   len(steps),
		Version: d.Version(),
		Diff:    LineDiff(before, after),
	}
	result.Changed = Changed(result.Diff)

	if opts.Write {
		if err := d.Save(d.Path()); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path), err)
		}
		result.Written = true
		opts.logger().Info("project saved", "path", d.Path(), "version", d.Version())
	}

	if opts.Database != "" {
		st, err := opts.openStore(f, opts.Database)
		if err != nil {
			return err
		}
		defer st.Close()

		rev, err := ir.NewRevision(d.Path(), d.Version(), []byte(after))
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to build revision", err)
		}
		rev, err = st.WriteRevision(ctx, rev)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to record revision", err)
		}
		result.Revision = rev.ID
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	if result.Changed {
		newDiffPrinter(opts.colorize(w)).print(w, result.Diff)
	} else {
		fmt.Fprintln(w, "no changes")
	}
	fmt.Fprintf(w, "applied %d step(s), version %d\n", result.Steps, result.Version)
	if result.Written {
		fmt.Fprintf(w, "wrote %s\n", path)
	}
	if result.Revision != "" {
		fmt.Fprintf(w, "recorded revision %s\n", shortID(result.Revision))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
