package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mainprgm/internal/frontend"
	"mainprgm/internal/lexer"
	"mainprgm/internal/report"
)

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			tokens, lexErrs := lexer.Lex(string(content))
			a.log.Debug("Lexed", "file", path, "tokens", len(tokens), "errors", len(lexErrs))

			w := a.writer(cmd)
			if w.Structured() {
				if err := w.Encode(tokens); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, tok := range tokens {
					if _, err := fmt.Fprintf(out, "%4d:%-4d %-13s %s\n", tok.Line, tok.Column, tok.Type, tok.Value); err != nil {
						return err
					}
				}
			}

			if len(lexErrs) == 0 {
				return nil
			}
			res := &frontend.Result{Name: path, Tokens: tokens, LexErrors: lexErrs}
			f := report.FromOutcome(frontend.Outcome{Path: path, Result: res}, false)
			if err := report.NewWriter(cmd.ErrOrStderr(), report.Options{Format: "text"}).Write([]report.File{f}); err != nil {
				return err
			}
			return errProblems
		},
	}
}
