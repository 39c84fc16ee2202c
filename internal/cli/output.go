package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ppiankov/brainmap/internal/rma"
)

// idFlags are the identifying parameters shared by lookup commands
type idFlags struct {
	ids      []int64
	acronyms []string
	names    []string
}

func (f *idFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64SliceVar(&f.ids, "id", nil, "numeric id (repeatable)")
	cmd.Flags().StringArrayVar(&f.acronyms, "acronym", nil, "acronym, case sensitive (repeatable)")
	cmd.Flags().StringArrayVar(&f.names, "name", nil, "full name, case sensitive (repeatable)")
}

func (f *idFlags) identifier() rma.Identifier {
	return rma.Identifier{IDs: f.ids, Acronyms: f.acronyms, Names: f.names}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, rows [][]string) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
