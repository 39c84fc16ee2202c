package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brainmap/internal/extract"
	"github.com/ppiankov/brainmap/internal/lookup"
)

func newGeneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gene",
		Short: "Look up genes with mouse brain ISH data",
	}
	cmd.AddCommand(
		newCheckCmd(a, "gene", func() validator { return a.genes() }),
		newGeneInfoCmd(a),
		newGeneExperimentsCmd(a),
		newAttributesCmd(a, extract.GeneSchema),
	)
	return cmd
}

func newGeneInfoCmd(a *app) *cobra.Command {
	var ids idFlags
	var attrs []string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print gene attributes",
		Example: `  brainmap gene info --acronym Pdyn
  brainmap gene info --id 18376 --attr name --attr entrez-id --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ids.identifier()
			res, err := a.genes().Info(cmd.Context(), id, attrs...)
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

func newGeneExperimentsCmd(a *app) *cobra.Command {
	var ids idFlags
	var plane string

	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List ISH experiment ids of a gene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := lookup.ParsePlane(plane)
			if err != nil {
				return err
			}
			id := ids.identifier()
			expIDs, err := a.genes().ExperimentIDs(cmd.Context(), id, p)
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"identifier":  id.String(),
					"plane":       p,
					"experiments": expIDs,
				})
			}
			if len(expIDs) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no %s experiments for %s\n", p, id)
				return err
			}
			for _, n := range expIDs {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatInt(n, 10)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	ids.register(cmd)
	cmd.Flags().StringVar(&plane, "plane", string(lookup.PlaneSagittal), "plane of section: sagittal or coronal")
	return cmd
}
