package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/core/template"
)

// templatesCommand lists the node templates.
func (c *CLI) templatesCommand() *cobra.Command {
	var (
		asJSON bool
		picker bool
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the built-in node templates",
		Long: `List the built-in node templates.

Every node in a graph is instantiated from a template: a label, an optional
code pattern with $N placeholders, and typed input and output ports. With
--picker only the entries offered by an editor's node picker are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := template.NewCatalog()
			list := cat.All()
			if picker {
				list = template.NewStdRegistry(cat).All()
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			fmt.Println(templateTable(list))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print templates as JSON")
	cmd.Flags().BoolVar(&picker, "picker", false, "list only the node picker entries")

	return cmd
}

func templateTable(list []template.Template) string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		pattern := "-"
		if t.HasPattern() {
			pattern = *t.Pattern
		}
		rows = append(rows, []string{t.Label, pattern, fmtPorts(t.Inputs), fmtPorts(t.Outputs)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Label", "Pattern", "Inputs", "Outputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Inherit(StyleHighlight)
			case col == 1:
				return base.Inherit(StylePattern)
			}
			return base.Inherit(StyleDim)
		}).
		String()
}

// fmtPorts renders ports as "name:type=default".
func fmtPorts(ports []template.Port) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		s := p.Name + ":" + p.Type.String()
		if p.Default != nil {
			s += "=" + p.Default.Render()
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}
