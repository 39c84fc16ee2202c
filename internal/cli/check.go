package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brainmap/internal/rma"
)

// validator is satisfied by lookup.Structures and lookup.Genes
type validator interface {
	CheckValidity(ctx context.Context, id rma.Identifier) (bool, *rma.Envelope, error)
}

// newCheckCmd reports whether an identifier resolves. An identifier that
// does not resolve exits non-zero.
func newCheckCmd(a *app, entity string, build func() validator) *cobra.Command {
	var ids idFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: fmt.Sprintf("Check that a %s identifier exists", entity),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ids.identifier()
			ok, env, err := build().CheckValidity(cmd.Context(), id)
			if err != nil {
				return err
			}

			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), map[string]any{
					"entity":     entity,
					"identifier": id.String(),
					"valid":      ok,
					"rows":       env.TotalRows,
				}); err != nil {
					return err
				}
			} else if ok {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid (%d matches)\n", entity, id, env.TotalRows); err != nil {
					return err
				}
			}

			if !ok {
				return rma.NotFound(entity, id)
			}
			return nil
		},
	}
	ids.register(cmd)
	return cmd
}
