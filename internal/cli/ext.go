package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/projdoc/internal/project"
)

// ExtResult reports an extension section.
type ExtResult struct {
	Path     string   `json:"path"`
	Section  string   `json:"section,omitempty"`
	Fragment string   `json:"fragment,omitempty"`
	Sections []string `json:"sections,omitempty"`
}

// NewExtCommand creates the ext command and its subcommands.
func NewExtCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ext",
		Short: "Read and write ProjectExtensions sections",
		Long: `Read and write the tool-specific sections stored under
<ProjectExtensions>. Set and rm save the file in place.

Examples:
  projdoc ext ls app.csproj
  projdoc ext get app.csproj VisualStudio
  projdoc ext set app.csproj Tool '<Setting>1</Setting>'
  projdoc ext rm app.csproj Tool`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls <file>",
		Short: "List extension sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtList(rootOpts, cmd, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <file> <section>",
		Short: "Print the markup of a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtGet(rootOpts, cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <file> <section> <fragment>",
		Short: "Store markup under a section, replacing what was there",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtEdit(rootOpts, cmd, args[0], args[1], func(d *project.Document) error {
				return d.SetExtension(args[1], args[2])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <file> <section>",
		Short: "Remove a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtEdit(rootOpts, cmd, args[0], args[1], func(d *project.Document) error {
				ok, err := d.RemoveExtension(args[1])
				if err == nil && !ok {
					err = errNoSection(args[1])
				}
				return err
			})
		},
	})

	return cmd
}

func errNoSection(section string) *ExitError {
	return NewExitError(ExitFailure, fmt.Sprintf("no extension section %q", section))
}

func runExtList(opts *RootOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)
	d, err := opts.openDocument(f, path, project.LegacyEngine)
	if err != nil {
		return err
	}
	defer d.Close()

	sections := d.ExtensionSections()
	if f.JSON() {
		return f.Success(ExtResult{Path: path, Sections: sections})
	}
	for _, s := range sections {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}

func runExtGet(opts *RootOptions, cmd *cobra.Command, path, section string) error {
	f := opts.formatter(cmd)
	d, err := opts.openDocument(f, path, project.LegacyEngine)
	if err != nil {
		return err
	}
	defer d.Close()

	fragment, ok := d.Extension(section)
	if !ok {
		return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no extension section %q", section), nil)
	}
	if f.JSON() {
		return f.Success(ExtResult{Path: path, Section: section, Fragment: fragment})
	}
	fmt.Fprintln(cmd.OutOrStdout(), fragment)
	return nil
}

func runExtEdit(opts *RootOptions, cmd *cobra.Command, path, section string, edit func(*project.Document) error) error {
	f := opts.formatter(cmd)
	d, err := opts.openDocument(f, path, project.LegacyEngine)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := edit(d); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			return f.Fail(exitErr.Code, ErrCodeNotFound, exitErr.Message, nil)
		}
		if project.IsMalformed(err) {
			return f.Fail(ExitCommandError, ErrCodeMalformed, "fragment is not well-formed", err)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to edit section %q", section), err)
	}
	if err := d.Save(d.Path()); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}

	fragment, _ := d.Extension(section)
	if f.JSON() {
		return f.Success(ExtResult{Path: path, Section: section, Fragment: fragment})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
