package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brainmap/internal/extract"
	"github.com/ppiankov/brainmap/internal/rma"
)

func newStructureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "structure",
		Aliases: []string{"st"},
		Short:   "Look up brain structures",
		Long: `Look up brain structures of the adult and developing mouse atlases.

Acronyms are not unique across atlases, so one acronym may match several
structures; info prints one column per match.`,
	}
	cmd.AddCommand(
		newCheckCmd(a, "structure", func() validator { return a.structures() }),
		newStructureInfoCmd(a),
		newStructureCoordsCmd(a),
		newAttributesCmd(a, extract.StructureSchema),
	)
	return cmd
}

func newStructureInfoCmd(a *app) *cobra.Command {
	var ids idFlags
	var attrs []string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print structure attributes",
		Example: `  brainmap structure info --acronym SSp
  brainmap structure info --id 1018 --attr name --attr color-hex-triplet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ids.identifier()
			res, err := a.structures().Info(cmd.Context(), id, attrs...)
			if err != nil {
				return err
			}
			return printResult(cmd, a.jsonOut, id, res)
		},
	}
	ids.register(cmd)
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute to print (repeatable, default all)")
	return cmd
}

func newStructureCoordsCmd(a *app) *cobra.Command {
	var ids idFlags

	cmd := &cobra.Command{
		Use:     "coords",
		Aliases: []string{"coordinates"},
		Short:   "Print structure centers per hemisphere",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ids.identifier()
			coords, err := a.structures().Coordinates(cmd.Context(), id)
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"identifier": id.String(),
					"right":      points(coords.Right()),
					"left":       points(coords.Left()),
				})
			}

			rows := [][]string{{"side", "x", "y", "z"}}
			for _, side := range []struct {
				name  string
				space int64
			}{
				{"right", extract.ReferenceSpaceRight},
				{"left", extract.ReferenceSpaceLeft},
			} {
				for _, p := range coords[side.space] {
					rows = append(rows, []string{
						side.name,
						strconv.FormatInt(p.X, 10),
						strconv.FormatInt(p.Y, 10),
						strconv.FormatInt(p.Z, 10),
					})
				}
			}
			if len(rows) == 1 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no coordinates for %s\n", id)
				return err
			}
			return writeTable(cmd.OutOrStdout(), rows)
		},
	}
	ids.register(cmd)
	return cmd
}

// points keeps empty sides as [] rather than null in JSON
func points(p []extract.Point) []extract.Point {
	if p == nil {
		return []extract.Point{}
	}
	return p
}

func printResult(cmd *cobra.Command, jsonOut bool, id rma.Identifier, res *extract.Result) error {
	if jsonOut {
		values := make(map[string]any, len(res.Names))
		for _, name := range res.Names {
			all := res.All(name)
			if len(all) == 1 {
				values[name] = all[0]
			} else {
				values[name] = all
			}
		}
		skipped := res.Skipped
		if skipped == nil {
			skipped = []string{}
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"entity":     res.Entity,
			"identifier": id.String(),
			"attributes": values,
			"skipped":    skipped,
		})
	}

	columns := 0
	for _, name := range res.Names {
		columns = max(columns, len(res.All(name)))
	}
	header := []string{"attribute"}
	if columns <= 1 {
		header = append(header, "value")
	} else {
		for i := 1; i <= columns; i++ {
			header = append(header, fmt.Sprintf("match %d", i))
		}
	}

	rows := [][]string{header}
	for _, name := range res.Names {
		row := []string{name}
		for _, v := range res.All(name) {
			row = append(row, v.String())
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if len(res.Names) > 0 {
		if err := writeTable(out, rows); err != nil {
			return err
		}
	}
	for _, name := range res.Skipped {
		if _, err := fmt.Fprintf(out, "skipped unknown attribute %q\n", name); err != nil {
			return err
		}
	}
	return nil
}
