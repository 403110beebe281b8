package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/projdoc/internal/project"
)

// ShowNode is one element in the summary of a project.
type ShowNode struct {
	Name      string     `json:"name"`
	Condition string     `json:"condition,omitempty"`
	Children  []ShowNode `json:"children,omitempty"`
}

// ShowResult summarizes a project.
type ShowResult struct {
	Path           string     `json:"path"`
	ToolsVersion   string     `json:"tools_version,omitempty"`
	DefaultTargets string     `json:"default_targets,omitempty"`
	Elements       []ShowNode `json:"elements"`
	Extensions     []string   `json:"extensions,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Summarize the groups, items, imports and targets of a project",
		Long: `Print the top-level elements of a project and the elements directly
inside them.

Examples:
  projdoc show app.csproj
  projdoc show app.csproj --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, args[0])
		},
	}
}

func runShow(opts *RootOptions, cmd *cobra.Command, path string) error {
	f := opts.formatter(cmd)
	d, err := opts.openDocument(f, path, project.LegacyEngine)
	if err != nil {
		return err
	}
	defer d.Close()

	result := summarize(d, path)
	if f.JSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	var header []string
	if result.ToolsVersion != "" {
		header = append(header, "ToolsVersion="+result.ToolsVersion)
	}
	if result.DefaultTargets != "" {
		header = append(header, "DefaultTargets="+result.DefaultTargets)
	}
	if len(header) > 0 {
		fmt.Fprintf(w, "Project %s (%s)\n", path, strings.Join(header, ", "))
	} else {
		fmt.Fprintf(w, "Project %s\n", path)
	}
	for _, n := range result.Elements {
		printShowNode(cmd, n, 1)
	}
	return nil
}

func summarize(d *project.Document, path string) ShowResult {
	result := ShowResult{
		Path:           path,
		ToolsVersion:   d.ToolsVersion(),
		DefaultTargets: d.DefaultTargets(),
		Elements:       []ShowNode{},
		Extensions:     d.ExtensionSections(),
	}
	for el := range d.Elements() {
		n := ShowNode{Name: el.Describe(), Condition: el.Condition()}
		if el.Kind() != project.KindProjectExtensions {
			for child := range el.Elements() {
				n.Children = append(n.Children, ShowNode{Name: child.Describe(), Condition: child.Condition()})
			}
		}
		result.Elements = append(result.Elements, n)
	}
	return result
}

func printShowNode(cmd *cobra.Command, n ShowNode, depth int) {
	line := strings.Repeat("  ", depth) + n.Name
	if n.Condition != "" && !strings.Contains(n.Name, "[Condition=") {
		line += " if " + n.Condition
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	for _, c := range n.Children {
		printShowNode(cmd, c, depth+1)
	}
}
