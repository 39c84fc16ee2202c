package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/brainmap/internal/extract"
)

func newAttributesCmd(a *app, schema *extract.Schema) *cobra.Command {
	return &cobra.Command{
		Use:   "attributes",
		Short: "List the " + schema.Entity + " attributes info can print",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs := schema.Attributes()
			if a.jsonOut {
				type attribute struct {
					Name string `json:"name"`
					Kind string `json:"kind"`
					Path string `json:"path"`
				}
				out := make([]attribute, 0, len(attrs))
				for _, attr := range attrs {
					out = append(out, attribute{Name: attr.Name, Kind: attr.Kind.String(), Path: attr.Path})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			rows := [][]string{{"attribute", "kind", "path"}}
			for _, attr := range attrs {
				rows = append(rows, []string{attr.Name, attr.Kind.String(), attr.Path})
			}
			return writeTable(cmd.OutOrStdout(), rows)
		},
	}
}
