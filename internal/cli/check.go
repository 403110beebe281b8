package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/projdoc/internal/compiler"
	"github.com/roach88/projdoc/internal/project"
	"github.com/roach88/projdoc/internal/textformat"
)

// CheckResult is the outcome of checking one file.
type CheckResult struct {
	Path      string     `json:"path"`
	Identical bool       `json:"identical"`
	Diff      []DiffLine `json:"diff,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Verify that a project file survives a load/save round trip",
		Long: `Load a project file, serialize it again and compare the bytes.

A file that is not reproduced exactly is reported with a line diff. Target
dependency cycles are reported as warnings.

Exit codes:
  0 - Round trip is byte-identical
  1 - Round trip differs
  2 - Command error (file not found, malformed project, etc.)

Examples:
  projdoc check app.csproj
  projdoc check app.csproj --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args[0])
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)

	raw, err := os.ReadFile(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("project file not found: %s", path), err)
	}
	d, err := opts.openDocument(f, path, project.LegacyEngine)
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := d.Write()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to serialize project", err)
	}

	result := CheckResult{
		Path:      path,
		Identical: bytes.Equal(raw, out),
		Warnings:  targetCycleWarnings(d),
	}
	if !result.Identical {
		before, err := textformat.Decode(raw, d.Format())
		if err != nil {
			before = raw
		}
		result.Diff = LineDiff(string(before), d.String())
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Identical {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeRoundTrip, Message: "round trip differs"}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
		if result.Identical {
			fmt.Fprintf(w, "✓ %s: round trip is byte-identical\n", path)
		} else {
			fmt.Fprintf(w, "✗ %s: round trip differs\n", path)
			newDiffPrinter(opts.colorize(w)).print(w, result.Diff)
		}
	}

	if !result.Identical {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: round trip differs", path))
	}
	return nil
}

// targetCycleWarnings reports dependency cycles among the targets of d.
func targetCycleWarnings(d *project.Document) []string {
	deps := make(map[string][]string)
	for t := range d.Targets() {
		name, _ := t.Attr("Name")
		if name == "" {
			continue
		}
		dependsOn, _ := t.Attr("DependsOnTargets")
		for dep := range strings.SplitSeq(dependsOn, ";") {
			if dep = strings.TrimSpace(dep); dep != "" {
				deps[name] = append(deps[name], dep)
			}
		}
		if _, ok := deps[name]; !ok {
			deps[name] = nil
		}
	}
	var warnings []string
	for _, w := range compiler.AnalyzeTargetCycles(deps) {
		warnings = append(warnings, w.Message)
	}
	return warnings
}
