package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mainprgm/internal/frontend"
	"mainprgm/internal/report"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		jobs    int
		symbols bool
	)
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Lex, parse and analyse programs",
		Long: `Runs the full front end on every file and reports lexical errors,
syntax errors and semantic diagnostics. Files are processed concurrently.

Examples:
  mainprgm check prog.prgm
  mainprgm check --symbols -f json a.prgm b.prgm`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcomes, err := frontend.CompileFiles(cmd.Context(), args, a.log, jobs)
			if err != nil {
				return err
			}

			withSymbols := symbols || a.cfg.Output.ShowSymbols
			files := make([]report.File, len(outcomes))
			failed, unreadable := false, 0
			for i, o := range outcomes {
				files[i] = report.FromOutcome(o, withSymbols)
				if o.Result == nil {
					unreadable++
				}
				if !files[i].Accepted {
					failed = true
				}
			}

			if err := a.writer(cmd).Write(files); err != nil {
				return err
			}
			// Unreadable inputs are I/O failures, not problems in a program.
			if unreadable > 0 {
				return fmt.Errorf("%d of %d file(s) could not be read", unreadable, len(files))
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files analysed in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&symbols, "symbols", false, "include the symbol table")
	return cmd
}
