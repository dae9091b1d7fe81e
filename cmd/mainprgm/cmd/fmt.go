package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mainprgm/internal/ast"
)

func newFmtCmd(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print the program in canonical form",
		Long: `Parses the file and prints it back with canonical spacing and
parentheses. Comments are not preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			res, err := a.compile(cmd, path)
			if err != nil {
				return err
			}
			formatted := ast.Format(res.Program)
			if !write {
				_, err = fmt.Fprint(cmd.OutOrStdout(), formatted)
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			a.log.Info("Formatted", "file", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}
