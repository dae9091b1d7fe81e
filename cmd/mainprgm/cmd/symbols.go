package cmd

import (
	"github.com/spf13/cobra"

	"mainprgm/internal/report"
)

func newSymbolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print the symbol table",
		Long: `Prints every declared name with its kind, type, folded constant value
and declaration position. Semantic diagnostics do not prevent the table
from being printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(cmd, args[0])
			if err != nil {
				return err
			}
			rows := report.Symbols(res.Symbols)
			w := a.writer(cmd)
			if w.Structured() {
				return w.Encode(rows)
			}
			return w.WriteSymbols(rows)
		},
	}
}
