package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/worker"
)

func newBatchCmd(a *app) *cobra.Command {
	var workers int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Validate identifiers from a file in parallel",
		Long: `Validate many identifiers concurrently.

The file holds one identifier per line. Integer lines are ids, anything
else is an acronym. Blank lines and lines starting with # are ignored and
repeated identifiers are checked once.

Example:
  brainmap batch structure ids.txt
  brainmap batch gene genes.txt --workers 8 --json`,
	}

	run := func(entity string, build func() validator) *cobra.Command {
		return &cobra.Command{
			Use:   entity + " <file>",
			Short: fmt.Sprintf("Validate %s identifiers from a file", entity),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if workers <= 0 {
					workers = a.cfg.Concurrency.Workers
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				processor := worker.NewBatchProcessor(build(), workers, logging.ComponentLogger("batch"))
				results, err := processor.ProcessFile(ctx, args[0])
				if err != nil {
					return err
				}
				return printBatch(cmd, a.jsonOut, entity, results)
			},
		}
	}

	cmd.PersistentFlags().IntVar(&workers, "workers", 0, "number of concurrent checks (default from config)")
	cmd.PersistentFlags().DurationVar(&timeout, "batch-timeout", 10*time.Minute, "total time allowed for the batch")
	cmd.AddCommand(
		run("structure", func() validator { return a.structures() }),
		run("gene", func() validator { return a.genes() }),
	)
	return cmd
}

type batchLine struct {
	Identifier string `json:"identifier"`
	Valid      bool   `json:"valid"`
	Rows       int    `json:"rows"`
	Error      string `json:"error,omitempty"`
}

func printBatch(cmd *cobra.Command, jsonOut bool, entity string, results []*worker.ValidationResult) error {
	lines := make([]batchLine, len(results))
	valid, failed := 0, 0
	for i, r := range results {
		lines[i] = batchLine{Identifier: r.Identifier.String(), Valid: r.Valid, Rows: r.Rows}
		switch {
		case r.Error != nil:
			lines[i].Error = r.Error.Error()
			failed++
		case r.Valid:
			valid++
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(out, map[string]any{
			"entity":  entity,
			"results": lines,
		})
	}

	if len(lines) == 0 {
		_, err := fmt.Fprintln(out, "no identifiers in file")
		return err
	}

	rows := [][]string{{"identifier", "valid", "matches", "error"}}
	for _, l := range lines {
		mark := pterm.Green("yes")
		if !l.Valid {
			mark = pterm.Red("no")
		}
		rows = append(rows, []string{l.Identifier, mark, strconv.Itoa(l.Rows), l.Error})
	}
	if err := writeTable(out, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d checked, %d valid, %d invalid, %d failed\n",
		len(lines), valid, len(lines)-valid-failed, failed)
	return err
}
